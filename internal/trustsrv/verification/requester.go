package verification

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

// Requester identifies the client performing a verification attempt.
// The raw IP lives only for the duration of the request; event records
// carry the salted hash.
type Requester struct {
	IP        string
	UserAgent string
	Country   string
}

// RequesterFromRequest extracts the client identity from an HTTP request,
// honoring X-Forwarded-For from the fronting proxy.
func RequesterFromRequest(r *http.Request) Requester {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			ip = strings.TrimSpace(first)
		}
	}
	return Requester{
		IP:        ip,
		UserAgent: r.UserAgent(),
		Country:   r.Header.Get("X-Country-Code"),
	}
}

// IPHashLength is the stored length of a hashed client IP.
const IPHashLength = 16

// HashIP returns a salted SHA-256 of the client IP truncated to 16 hex
// characters. Raw addresses are never persisted.
func HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(config.Config().IPHashSalt + ip))
	return hex.EncodeToString(sum[:])[:IPHashLength]
}
