// internal/fingerprint/fingerprint.go
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// UnknownValue is the sentinel used when a client IP or user agent cannot be
// determined. Derivation never fails.
const UnknownValue = "unknown"

// Fingerprint is an ephemeral, per-request visitor identity. Only the hashed
// identifiers are meant to be persisted; the raw IP stays in memory for the
// duration of the request.
type Fingerprint struct {
	IP        string
	IPHash    string
	VisitorID string
	UserAgent string
	Origin    string
	Host      string
}

// From derives a fingerprint from request headers: the first entry of
// X-Forwarded-For, else X-Real-Ip, else "unknown". IPHash is
// SHA-256(clientIP) and VisitorID is SHA-256(ipHash + ":" + userAgent).
// Origin and Host pass through for same-origin verification.
func From(r *http.Request) Fingerprint {
	ip := clientIP(r)
	if ip == "" {
		ip = UnknownValue
	}
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = UnknownValue
	}

	ipHash := sha256Hex(ip)
	return Fingerprint{
		IP:        ip,
		IPHash:    ipHash,
		VisitorID: sha256Hex(ipHash + ":" + ua),
		UserAgent: ua,
		Origin:    r.Header.Get("Origin"),
		Host:      r.Host,
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// first IP in the list is the client
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return r.Header.Get("X-Real-Ip")
}

func sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
