package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Trim + lower-case only for now; stricter rules can be added later behind
// a versioned policy.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
