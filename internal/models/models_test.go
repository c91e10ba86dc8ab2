package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http URL", "http://example.com", false},
		{"https URL", "https://example.com", false},
		{"URL with path", "https://example.com/path/to/resource", false},
		{"unsupported scheme", "ftp://example.com", true},
		{"not a URL", "not a url", true},
		{"empty", "", true},
		{"missing scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStripFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a#section", "https://example.com/a"},
		{"https://example.com/a?q=1#x", "https://example.com/a?q=1"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/#", "https://example.com/"},
	}
	for _, tt := range tests {
		got, err := StripFragment(tt.in)
		if err != nil {
			t.Fatalf("StripFragment(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("StripFragment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseScopePolicy(t *testing.T) {
	for _, name := range []string{"contains", "exact", "subdomain", "site"} {
		p, err := ParseScopePolicy(name)
		if err != nil || string(p) != name {
			t.Errorf("ParseScopePolicy(%q) = %q, %v", name, p, err)
		}
	}

	p, err := ParseScopePolicy("")
	if err != nil || p != ScopeContains {
		t.Errorf("empty policy should default to contains, got %q, %v", p, err)
	}

	if _, err := ParseScopePolicy("loose"); err == nil {
		t.Error("unknown policy should be rejected")
	}
}

func TestCrawlConfig_Validate(t *testing.T) {
	valid := CrawlConfig{
		MaxLinks:        10,
		PolitenessDelay: time.Second,
		RequestTimeout:  5 * time.Second,
		ScopePolicy:     ScopeContains,
	}

	tests := []struct {
		name    string
		mutate  func(c *CrawlConfig)
		wantErr bool
	}{
		{"valid", func(c *CrawlConfig) {}, false},
		{"zero delay allowed", func(c *CrawlConfig) { c.PolitenessDelay = 0 }, false},
		{"max_links zero", func(c *CrawlConfig) { c.MaxLinks = 0 }, true},
		{"negative delay", func(c *CrawlConfig) { c.PolitenessDelay = -time.Second }, true},
		{"zero timeout", func(c *CrawlConfig) { c.RequestTimeout = 0 }, true},
		{"negative body size", func(c *CrawlConfig) { c.MaxBodySize = -1 }, true},
		{"bad scope", func(c *CrawlConfig) { c.ScopePolicy = "nearby" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectivityConfig_Validate(t *testing.T) {
	cfg := ConnectivityConfig{ProbeAddress: "8.8.8.8:53", ProbeTimeout: time.Second, RetryInterval: 5 * time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(c *ConnectivityConfig){
		"empty probe address":     func(c *ConnectivityConfig) { c.ProbeAddress = "" },
		"zero probe timeout":      func(c *ConnectivityConfig) { c.ProbeTimeout = 0 },
		"zero retry interval":     func(c *ConnectivityConfig) { c.RetryInterval = 0 },
		"negative retry interval": func(c *ConnectivityConfig) { c.RetryInterval = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := cfg
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCrawlStats_DuplicatePercentage(t *testing.T) {
	s := CrawlStats{LinkCount: 5, LinkDuplicateCount: 1}
	if got := s.DuplicatePercentage(); got != 20 {
		t.Errorf("DuplicatePercentage() = %v, want 20", got)
	}

	if got := (CrawlStats{}).DuplicatePercentage(); got != 0 {
		t.Errorf("empty stats should report 0, got %v", got)
	}
}

func TestFetchResult(t *testing.T) {
	ok := Fetched("https://example.com/", 200, "text/html", "<html></html>")
	if !ok.OK() || ok.Reason() != "" {
		t.Errorf("Fetched result should be OK, got %+v", ok)
	}

	failed := FetchFailed("https://example.com/x", FailureNetwork, errors.New("connection refused"))
	if failed.OK() {
		t.Error("FetchFailed result should not be OK")
	}
	if !strings.Contains(failed.Reason(), "network-error") || !strings.Contains(failed.Reason(), "connection refused") {
		t.Errorf("unexpected reason: %q", failed.Reason())
	}

	if got := FetchFailed("u", FailureBadStatus, nil).Reason(); got != "bad-status" {
		t.Errorf("Reason() = %q, want bad-status", got)
	}
}

func TestCrawlReport_JSON(t *testing.T) {
	report := &CrawlReport{
		RunID:   NewRunID(),
		RootURL: "https://example.com/",
		Domain:  "example.com",
		Stats:   CrawlStats{LinkCount: 3, LinkDuplicateCount: 1, ErrorCount: 1},
		Results: []CrawlResult{{URL: "https://example.com/", HTMLPath: "output/example.com/0.html"}},
	}

	data, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	results, ok := raw["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("results missing from JSON: %s", data)
	}
	first := results[0].(map[string]any)
	if first["html_path"] != "output/example.com/0.html" {
		t.Errorf("html_path = %v", first["html_path"])
	}

	var decoded CrawlReport
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON error: %v", err)
	}
	if decoded.PagesCrawled() != 1 || decoded.Stats.ErrorCount != 1 {
		t.Errorf("decoded report mismatch: %+v", decoded)
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	headers, err := CliHeaders{"  User-Agent  : Bot/1.0", "X-Token: a:b"}.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if headers.Get("User-Agent") != "Bot/1.0" {
		t.Errorf("User-Agent = %q", headers.Get("User-Agent"))
	}
	if headers.Get("X-Token") != "a:b" {
		t.Errorf("value containing a colon should be kept whole, got %q", headers.Get("X-Token"))
	}

	if _, err := (CliHeaders{"no-colon"}).Parse(); err == nil {
		t.Error("missing colon should fail")
	}
	if _, err := (CliHeaders{": value"}).Parse(); err == nil {
		t.Error("empty name should fail")
	}

	var empty CliHeaders
	if _, err := empty.Parse(); err != nil {
		t.Errorf("nil list should parse cleanly, got %v", err)
	}
}
