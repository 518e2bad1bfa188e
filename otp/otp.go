// Package otp implements the HOTP (RFC 4226) and TOTP (RFC 6238) one-time
// password algorithms used by Guacamole's TOTP extension. Codes are six
// digits, derived with HMAC-SHA1 over a 30-second time step.
package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/guacops/go-guacamole/apperrors"
)

// ErrBadSecret indicates the shared secret is not valid base32.
var ErrBadSecret = apperrors.New("invalid base32 OTP secret")

const (
	// Digits is the code length produced by HOTP and TOTP.
	Digits = 6

	// timeStep is the TOTP interval mandated by RFC 6238 and used by
	// Guacamole's TOTP extension.
	timeStep = 30 * time.Second

	modulus = 1000000 // 10^Digits
)

// decodeSecret decodes a base32 shared secret. Lowercase input, spaces and
// trailing padding are tolerated, matching what authenticator apps accept.
func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	s = strings.TrimRight(s, "=")
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return nil, ErrBadSecret.Err(err)
	}
	return key, nil
}

// HOTP computes the RFC 4226 counter-based code for the given base32 secret.
// The counter is encoded big-endian, the HMAC-SHA1 digest is dynamically
// truncated, and the result is reduced mod 10^6.
func HOTP(secret string, counter uint64) (int, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return 0, err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return int(bin % modulus), nil
}

// TOTP computes the current time-based code for the given base32 secret,
// zero-padded to six digits.
func TOTP(secret string) (string, error) {
	return TOTPAt(secret, time.Now())
}

// TOTPAt computes the code for an arbitrary point in time. The counter is
// the number of whole 30-second steps since the Unix epoch.
func TOTPAt(secret string, t time.Time) (string, error) {
	counter := uint64(t.Unix()) / uint64(timeStep/time.Second)
	code, err := HOTP(secret, counter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Digits, code), nil
}
