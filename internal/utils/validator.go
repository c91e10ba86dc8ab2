package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

// MaxHeaderValueLength longest accepted header value (8KB)
const MaxHeaderValueLength = 8192

var (
	headerNamePattern  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValuePattern = regexp.MustCompile(`^[\x20-\x7E\t]*$`)

	// set by the fetcher's transport, never by the user
	clientManagedHeaders = map[string]bool{
		"host":              true,
		"content-length":    true,
		"transfer-encoding": true,
		"connection":        true,
	}
)

// HeaderValidator checks request headers before they reach the fetcher
type HeaderValidator struct {
	maxValueLength int
}

// NewHeaderValidator creates a validator
func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{maxValueLength: MaxHeaderValueLength}
}

// Validate checks every header in name order and returns the first failure.
func (hv *HeaderValidator) Validate(headers http.Header) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			if err := hv.checkHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (hv *HeaderValidator) checkHeader(name, value string) error {
	if isClientManaged(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "header is set by the HTTP client and cannot be overridden",
			Suggestion: fmt.Sprintf("remove the '%s' header", name),
		}
	}
	if err := checkName(name); err != nil {
		return err
	}
	return hv.checkValue(name, value)
}

func checkName(name string) error {
	switch {
	case name == "":
		return &models.ValidationError{
			Field:  "name",
			Reason: "header name must not be empty",
		}
	case !headerNamePattern.MatchString(name):
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "header name may only hold letters, digits and hyphens",
			Suggestion: "use names like 'User-Agent' or 'X-Crawl-Run'",
		}
	}
	return nil
}

func (hv *HeaderValidator) checkValue(name, value string) error {
	if len(value) > hv.maxValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("header value is %d bytes, limit is %d", len(value), hv.maxValueLength),
		}
	}
	if !headerValuePattern.MatchString(value) {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "header value must be printable ASCII",
			Suggestion: "remove control and non-ASCII characters",
		}
	}
	return nil
}

func isClientManaged(name string) bool {
	return clientManagedHeaders[strings.ToLower(name)]
}
