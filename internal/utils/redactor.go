package utils

import (
	"net/http"
	"sort"
	"strings"
)

// header name fragments that mark a secret
var secretNameFragments = []string{
	"authorization",
	"cookie",
	"token",
	"key",
	"secret",
	"password",
	"credential",
}

// HeaderRedactor masks secret header values before they reach logs or the console
type HeaderRedactor struct {
	fragments []string
}

// NewHeaderRedactor creates a redactor
func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{fragments: secretNameFragments}
}

// Redact returns the first value of every header, masked where the name looks secret
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		result[name] = hr.redactValue(name, values[0])
	}
	return result
}

// RedactToString formats the redacted headers as "A: x, B: y", sorted by name
func (hr *HeaderRedactor) RedactToString(headers http.Header) string {
	redacted := hr.Redact(headers)
	names := make([]string, 0, len(redacted))
	for name := range redacted {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(redacted[name])
	}
	return b.String()
}

func (hr *HeaderRedactor) isSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range hr.fragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// redactValue keeps the auth scheme of bearer tokens and 4 chars on each side of long secrets
func (hr *HeaderRedactor) redactValue(name, value string) string {
	switch {
	case !hr.isSecret(name):
		return value
	case strings.HasPrefix(value, "Bearer "):
		return "Bearer ***"
	case len(value) > 8:
		return value[:4] + "***" + value[len(value)-4:]
	default:
		return "***"
	}
}
