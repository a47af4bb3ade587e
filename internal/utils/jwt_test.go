package utils

import (
	"errors"
	"testing"
)

// TestAccessTokenRoundTrip mints a token and verifies its claims come back.
func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("top-secret", 12, "STAFF", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	sub, role, err := VerifyAccessToken("top-secret", tok.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if sub != "12" || role != "STAFF" {
		t.Fatalf("claims = (%q,%q), want (12, STAFF)", sub, role)
	}
}

// TestVerifyAccessTokenRejectsWrongSecret ensures tokens signed with a
// different secret fail verification.
func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("top-secret", 12, "STAFF", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, _, err := VerifyAccessToken("other-secret", tok.Token); !errors.Is(err, ErrBadAccessToken) {
		t.Fatalf("err = %v, want ErrBadAccessToken", err)
	}
}

// TestVerifyAccessTokenRejectsGarbage ensures malformed tokens fail
// cleanly.
func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	if _, _, err := VerifyAccessToken("top-secret", "not.a.jwt"); !errors.Is(err, ErrBadAccessToken) {
		t.Fatalf("err = %v, want ErrBadAccessToken", err)
	}
}

// TestPasswordHashing round-trips bcrypt hash and compare.
func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 10)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatal("wrong password accepted")
	}
}
