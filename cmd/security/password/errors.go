package password

import "errors"

// Sentinel errors (stable for errors.Is).
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrInvalidHash      = errors.New("invalid bcrypt hash")
	ErrConfig           = errors.New("invalid password config")
)
