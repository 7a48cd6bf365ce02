package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testConfig() Config {
	cfg := DefaultConfig()
	// MinCost keeps the test suite fast; production uses DefaultCost.
	cfg.Cost = bcrypt.MinCost
	return cfg
}

func TestHashAndVerify_RoundTrip(t *testing.T) {
	cfg := testConfig()

	h, err := cfg.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h == "correct horse battery" {
		t.Fatalf("hash must not equal plaintext")
	}

	ok, err := cfg.Verify(h, "correct horse battery")
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}

	ok, err = cfg.Verify(h, "wrong password")
	if err != nil {
		t.Fatalf("Verify(wrong) unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("wrong password verified")
	}
}

func TestHash_PolicyBounds(t *testing.T) {
	cfg := testConfig()

	if _, err := cfg.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := cfg.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	cfg := testConfig()

	if _, err := cfg.Verify("not-a-bcrypt-hash", "whatever"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "12")
	t.Setenv("AUTHD_PASSWORD_MIN_LENGTH", "10")
	t.Setenv("AUTHD_PASSWORD_MAX_LENGTH", "64")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Cost != 12 || cfg.MinLength != 10 || cfg.MaxLength != 64 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "99")
	if _, err := FromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for bad cost, got %v", err)
	}

	t.Setenv("AUTHD_PASSWORD_BCRYPT_COST", "12")
	t.Setenv("AUTHD_PASSWORD_MIN_LENGTH", "80")
	if _, err := FromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for min > max, got %v", err)
	}
}
