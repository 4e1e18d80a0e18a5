package schema

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
)

// NormalizeURL validates a preview URL and normalizes it to an absolute
// http(s) URL. A bare host gets an https scheme.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidURL
	}
	return parsed.String(), nil
}

// ValidateClientID ensures a client id matches [a-z0-9._-] with no
// normalization.
func ValidateClientID(clientID ClientID) error {
	raw := string(clientID)
	if raw == "" {
		return ErrInvalidClientID
	}
	for _, r := range raw {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		return ErrInvalidClientID
	}
	return nil
}

// NewClientID generates a random transport client id.
func NewClientID() ClientID {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "client-unknown"
	}
	return ClientID(hex.EncodeToString(buf[:]))
}
