package session

import (
	"authd/cmd/security/token"
)

func newOpaqueRefreshToken(nBytes int) (plain string, hashHex string, err error) {
	plain, err = token.NewOpaque(nBytes)
	if err != nil {
		return "", "", err
	}

	hashHex = token.HashRefreshTokenHex(plain) // 64 hex chars

	return plain, hashHex, nil
}

func hashRefreshToken(plain string) string {
	return token.HashRefreshTokenHex(plain)
}
