package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL requires an absolute http(s) URL with a host.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must contain a host")
	}
	return nil
}

// StripFragment returns rawURL without its fragment.
func StripFragment(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// NewRunID generates a unique run ID
func NewRunID() string {
	return uuid.New().String()
}
