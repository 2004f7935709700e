package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Uniqueness is enforced on the normalized form; the original casing is kept for display.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeDisplayName trims the name and maps blank to nil.
func normalizeDisplayName(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func trimSpace(s string) string { return strings.TrimSpace(s) }
