package models

import (
	"fmt"
	"net/http"
	"strings"
)

// CliHeaders headers passed on the command line, each "Name: Value"
type CliHeaders []string

// Parse converts the list into an http.Header
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, err := parseHeaderString(s)
		if err != nil {
			return nil, fmt.Errorf("--header item %d: %w", i+1, err)
		}
		result.Set(name, value)
	}
	return result, nil
}

// parseHeaderString splits "Name: Value"
func parseHeaderString(s string) (name, value string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("missing colon separator, expected 'Name: Value'")
	}

	name = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])

	if name == "" {
		return "", "", fmt.Errorf("header name must not be empty")
	}

	return name, value, nil
}

// HeaderProvider supplies the request headers for every fetch.
type HeaderProvider interface {
	// GetHeaders returns the effective headers, merged default < config < cli.
	// An error means the configured headers failed validation.
	GetHeaders() (http.Header, error)
}

// ValidationError a header that failed validation
type ValidationError struct {
	Field      string // "name" or "value"
	HeaderName string
	Reason     string
	Suggestion string // optional
}

// Error implements error
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("header validation failed [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (suggestion: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError a config file that could not be loaded
type ConfigError struct {
	FilePath string
	Cause    error
}

// Error implements error
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config file error [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap supports errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
