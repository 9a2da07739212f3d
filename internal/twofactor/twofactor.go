// Package twofactor implements the platform's simplified time-based code
// scheme: SHA-1 over secret+epochMinute, reduced to six digits. It is a
// deliberate simulation and is NOT interoperable with RFC 6238 authenticator
// apps; codes are shown to the user in the app itself.
package twofactor

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecret returns a new 10-character shared secret.
func GenerateSecret() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = secretAlphabet[rand.Intn(len(secretAlphabet))]
	}
	return string(b)
}

// CodeAt derives the six-digit code for the epoch minute containing t.
func CodeAt(secret string, t time.Time) string {
	minute := t.UnixMilli() / 60000
	sum := sha1.Sum([]byte(secret + strconv.FormatInt(minute, 10)))
	n := binary.BigEndian.Uint32(sum[len(sum)-4:])
	return fmt.Sprintf("%06d", n%1000000)
}

// Verify accepts the code for the current epoch minute or the previous one,
// which gives each code a 60-120s validity window.
func Verify(secret, code string, now time.Time) bool {
	if code == CodeAt(secret, now) {
		return true
	}
	return code == CodeAt(secret, now.Add(-time.Minute))
}
