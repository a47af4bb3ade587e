package checkin

import (
	"crypto/hmac"   // keyed MAC construction
	"crypto/sha256" // SHA-256 as the underlying hash
	"encoding/hex"  // hex encoding of the signature
	"errors"        // sentinel errors for verification failures
	"fmt"           // compact field encoding under the MAC
	"time"          // issue and expiry timestamps
)

// ErrInvalidToken is returned by Verify when the signature does not match
// or the token claims to have been issued in the future beyond the allowed
// clock skew.
var ErrInvalidToken = errors.New("invalid security token")

// ErrTokenExpired is returned by Verify when the signature is valid but the
// token's lifetime (plus the allowed clock skew) has elapsed.
var ErrTokenExpired = errors.New("security token expired")

// SecurityToken is the ephemeral value embedded in a QR code for one
// rotation interval. It is never stored; a fresh one is produced on every
// rotation tick or on-demand display fetch. The JSON tags match the
// qr_update wire payload consumed by display clients.
type SecurityToken struct {
	EventID       uint64 `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	IssuedAt      int64  `json:"timestamp"`      // unix seconds
	ExpiresAt     int64  `json:"expires_at"`     // IssuedAt + TTL, unix seconds
	Signature     string `json:"security_token"` // hex HMAC-SHA256
}

// Signer issues and verifies security tokens. Signatures are HMAC-SHA256
// over the dot-separated decimal encoding of (eventID, checkinNumber,
// issuedAt) keyed with the event's secret, so every rotation yields a
// visibly different QR payload even when the window number is unchanged.
type Signer struct {
	ttl  time.Duration // token lifetime; 120s unless configured otherwise
	skew time.Duration // verification clock-skew allowance
}

// NewSigner constructs a Signer. A non-positive ttl falls back to the
// 120-second default; a negative skew is treated as zero.
func NewSigner(ttl, skew time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	if skew < 0 {
		skew = 0
	}
	return &Signer{ttl: ttl, skew: skew}
}

// Issue produces a token for the given event and check-in window at now.
// The caller supplies the per-event secret; the signer itself holds no key
// material.
func (s *Signer) Issue(eventID uint64, checkinNumber int, secret string, now time.Time) SecurityToken {
	issuedAt := now.Unix()
	return SecurityToken{
		EventID:       eventID,
		CheckinNumber: checkinNumber,
		IssuedAt:      issuedAt,
		ExpiresAt:     issuedAt + int64(s.ttl/time.Second),
		Signature:     sign(secret, eventID, checkinNumber, issuedAt),
	}
}

// Verify checks a presented token against the event secret and the clock.
// It accepts iff the signature matches the claimed fields and now is within
// the token lifetime, with the configured skew tolerated on both ends.
func (s *Signer) Verify(eventID uint64, checkinNumber int, issuedAt int64, signature, secret string, now time.Time) error {
	expected := sign(secret, eventID, checkinNumber, issuedAt)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidToken
	}
	nowUnix := now.Unix()
	skew := int64(s.skew / time.Second)
	if issuedAt > nowUnix+skew {
		return ErrInvalidToken
	}
	if nowUnix > issuedAt+int64(s.ttl/time.Second)+skew {
		return ErrTokenExpired
	}
	return nil
}

// sign computes the hex HMAC-SHA256 over the token fields. The fields are
// dot-separated decimals, which keeps the encoding injective: no two
// distinct (eventID, checkinNumber, issuedAt) triples produce the same
// input bytes.
func sign(secret string, eventID uint64, checkinNumber int, issuedAt int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%d.%d", eventID, checkinNumber, issuedAt)
	return hex.EncodeToString(mac.Sum(nil))
}
