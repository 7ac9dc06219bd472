package hpp

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// signature computes the gateway's double SHA-1 digest:
// sha1(sha1(f1.f2.....fn) + "." + secret), hex encoded.
func signature(secret string, fields ...string) string {
	inner := sha1.Sum([]byte(strings.Join(fields, ".")))
	outer := sha1.Sum([]byte(hex.EncodeToString(inner[:]) + "." + secret))
	return hex.EncodeToString(outer[:])
}

func signatureMatches(expected, got string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(got)))) == 1
}
