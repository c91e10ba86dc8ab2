package utils

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

func TestHeaderValidator_Validate(t *testing.T) {
	validator := NewHeaderValidator()

	tests := []struct {
		name        string
		headerName  string
		headerValue string
		expectError bool
	}{
		{"plain header", "User-Agent", "Mozilla/5.0", false},
		{"digits in name", "X-Request-ID-123", "v", false},
		{"empty value", "X-Empty", "", false},
		{"long value within limit", "X-Long", strings.Repeat(" ", 8000), false},
		{"space in name", "User Agent", "v", true},
		{"underscore in name", "User_Agent", "v", true},
		{"symbol in name", "User@Agent", "v", true},
		{"value too long", "X-TooLong", strings.Repeat("a", MaxHeaderValueLength+1), true},
		{"control characters", "X-Bad", "value\x00with\x01null", true},
		{"client managed Host", "Host", "example.com", true},
		{"client managed Content-Length", "Content-Length", "123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// bypass canonicalization so bad names reach the validator as written
			headers := http.Header{tt.headerName: []string{tt.headerValue}}
			err := validator.Validate(headers)
			if (err != nil) != tt.expectError {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestHeaderValidator_ErrorDetails(t *testing.T) {
	validator := NewHeaderValidator()

	err := validator.Validate(http.Header{"Connection": {"close"}})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *models.ValidationError", err)
	}
	if verr.HeaderName != "Connection" || verr.Field != "name" || verr.Suggestion == "" {
		t.Errorf("ValidationError = %+v", verr)
	}

	err = validator.Validate(http.Header{"X-Bad": {"café"}})
	if !errors.As(err, &verr) || verr.Field != "value" {
		t.Errorf("non-ASCII value should fail on the value, got %v", err)
	}
}

func TestHeaderValidator_FirstFailureIsStable(t *testing.T) {
	validator := NewHeaderValidator()
	headers := http.Header{
		"Z-Bad":      {"\x00"},
		"A-Bad":      {"\x01"},
		"User-Agent": {"ok"},
	}

	for i := 0; i < 20; i++ {
		var verr *models.ValidationError
		if err := validator.Validate(headers); !errors.As(err, &verr) || verr.HeaderName != "A-Bad" {
			t.Fatalf("run %d: first failure = %v, want A-Bad", i, err)
		}
	}
}

func TestHeaderRedactor(t *testing.T) {
	redactor := NewHeaderRedactor()

	headers := http.Header{
		"User-Agent":    []string{"Mozilla/5.0"},
		"Authorization": []string{"Bearer secret-token-12345"},
		"X-Api-Key":     []string{"api-key-67890"},
		"Cookie":        []string{"sid=1"},
	}

	safe := redactor.Redact(headers)
	if safe["User-Agent"] != "Mozilla/5.0" {
		t.Errorf("non-sensitive header changed: %q", safe["User-Agent"])
	}
	if safe["Authorization"] != "Bearer ***" {
		t.Errorf("Authorization = %q, want 'Bearer ***'", safe["Authorization"])
	}
	if safe["X-Api-Key"] != "api-***7890" {
		t.Errorf("X-Api-Key = %q", safe["X-Api-Key"])
	}
	if safe["Cookie"] != "***" {
		t.Errorf("short secret should be fully hidden, got %q", safe["Cookie"])
	}

	got := redactor.RedactToString(http.Header{"B": {"2"}, "A": {"1"}})
	if got != "A: 1, B: 2" {
		t.Errorf("RedactToString = %q", got)
	}
}

func TestReadURLsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roots.txt")
	content := "# roots\nhttps://example.com/\n\nnot-a-url\nhttp://example.org/docs\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://example.com/" || urls[1] != "http://example.org/docs" {
		t.Errorf("unexpected urls: %v", urls)
	}

	empty := filepath.Join(dir, "empty.txt")
	_ = os.WriteFile(empty, []byte("# nothing\n"), 0644)
	if _, err := ReadURLsFromFile(empty); err == nil {
		t.Error("file without valid URLs should fail")
	}

	if _, err := ReadURLsFromFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReadURLsFromFile_NormalizesRoots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.txt")
	content := "https://example.com/#top\nhttps://example.com/\nhttps://example.org/\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile error: %v", err)
	}
	// the fragment-stripped first line makes the second a repeat
	if len(urls) != 2 || urls[0] != "https://example.com/" || urls[1] != "https://example.org/" {
		t.Errorf("urls = %v", urls)
	}
}
