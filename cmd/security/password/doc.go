// Package password provides password hashing for authd.
//
// Hashes are bcrypt with a configurable cost; policy (length bounds, cost)
// is environment-driven with safe defaults so deployments can tune security
// parameters without code changes.
package password
