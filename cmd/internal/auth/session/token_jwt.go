package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the minimal identity envelope carried by an access token.
// It exists only inside the signed string and the verifier's return value;
// nothing here is ever persisted.
type AccessClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// AccessTokenManager issues and verifies short-lived access tokens.
type AccessTokenManager interface {
	Issue(userID, email string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type hs256Manager struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewHS256Manager builds an AccessTokenManager signing JWTs with HMAC-SHA256.
//
// The secret is symmetric and shared by issue and verify; it is read once
// from Config and never reloaded. Verification is a pure function of
// (secret, token, now) with no persistence and no external calls.
func NewHS256Manager(cfg Config) (AccessTokenManager, error) {
	if cfg.SigningSecret == "" || cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}

	return &hs256Manager{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: []byte(cfg.SigningSecret),
	}, nil
}

func (m *hs256Manager) Issue(userID, email string, now time.Time) (string, time.Time, error) {
	// The "exp" claim carries second precision on the wire. Round up to
	// the next whole second so the returned expiry matches what
	// verification will later see and the token never expires early.
	exp := now.Add(m.ttl)
	if rounded := exp.Truncate(time.Second); rounded.Before(exp) {
		exp = rounded.Add(time.Second)
	} else {
		exp = rounded
	}

	claims := jwtClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *hs256Manager) Verify(token string, now time.Time) (AccessClaims, error) {
	// Claims validation is done by hand below so the expiry boundary is
	// exact and checked against the caller's clock, not the wall clock.
	// The parser still verifies the signature before claims are decoded
	// into trusted values; any parse failure means the token cannot be
	// trusted at all.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(token, &jwtClaims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, ErrInvalidSignature
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return AccessClaims{}, ErrInvalidSignature
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return AccessClaims{}, ErrInvalidSignature
	}

	// Inclusive boundary: a token is still valid at exactly its expiry.
	if now.After(claims.ExpiresAt.Time) {
		return AccessClaims{}, ErrAccessTokenExpired
	}

	out := AccessClaims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
		Issuer:    claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
