package authapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"fooddecider/cmd/identity"
)

// Audit outcomes.
const (
	outcomeSuccess  = "success"
	outcomeConflict = "conflict"
	outcomeInvalid  = "invalid"
	outcomeDenied   = "denied"
	outcomeError    = "error"
)

// audit logs one auth event and reports it to the observer.
// It never receives passwords, hashes or tokens. The submitted email is
// logged only as a digest of its normalized form.
func (h *Handler) audit(r *http.Request, action, outcome, accountID, identifier string) {
	h.observe(action, outcome)

	attrs := []any{
		"action", action,
		"outcome", outcome,
		"user_agent", trimUA(r.UserAgent()),
	}
	if ip := clientIP(r, h.cfg.TrustProxy); ip != nil {
		attrs = append(attrs, "ip", ip.String())
	}
	if accountID != "" {
		attrs = append(attrs, "account_id", accountID)
	}
	if identifier != "" {
		attrs = append(attrs, "identifier_hash", identifierDigest(identifier))
	}
	h.log.Info("auth.audit", attrs...)
}

// identifierDigest returns the first 8 bytes of SHA-256 over the normalized
// email, hex encoded. Equal emails correlate across log lines.
func identifierDigest(email string) string {
	sum := sha256.Sum256([]byte(identity.NormalizeEmail(email)))
	return hex.EncodeToString(sum[:8])
}

func trimUA(ua string) string {
	ua = strings.TrimSpace(ua)
	if len(ua) > 256 {
		return ua[:256]
	}
	return ua
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
