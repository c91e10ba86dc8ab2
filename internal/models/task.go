package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CrawlState orchestrator state
type CrawlState string

const (
	StateIdle       CrawlState = "idle"       // not started
	StateRunning    CrawlState = "running"    // between iterations
	StateFetching   CrawlState = "fetching"   // gate + GET in progress
	StateStoring    CrawlState = "storing"    // persisting a fetched page
	StateExtracting CrawlState = "extracting" // feeding links back to the frontier
	StateSkipping   CrawlState = "skipping"   // dropping a failed URL
	StateTerminated CrawlState = "terminated" // frontier empty or target reached
)

// ScopePolicy decides which hosts count as "same host" as the root.
type ScopePolicy string

const (
	// ScopeContains keeps a candidate whose host contains the root host as a substring.
	// This is the historical behaviour and also admits hosts like evil-example.com.
	ScopeContains ScopePolicy = "contains"
	// ScopeExact keeps only the root host itself (port included).
	ScopeExact ScopePolicy = "exact"
	// ScopeSubdomain keeps the root host and any host ending in "."+root.
	ScopeSubdomain ScopePolicy = "subdomain"
	// ScopeSite keeps any host sharing the root's registrable domain (eTLD+1).
	ScopeSite ScopePolicy = "site"
)

// ParseScopePolicy parses a policy name. Empty selects ScopeContains.
func ParseScopePolicy(s string) (ScopePolicy, error) {
	switch p := ScopePolicy(s); p {
	case "":
		return ScopeContains, nil
	case ScopeContains, ScopeExact, ScopeSubdomain, ScopeSite:
		return p, nil
	default:
		return "", fmt.Errorf("unknown scope policy %q (valid: contains, exact, subdomain, site)", s)
	}
}

// CrawlStats counters for one crawl run
type CrawlStats struct {
	LinkCount          int `json:"link_count"`           // candidates seen, root included
	LinkDuplicateCount int `json:"link_duplicate_count"` // candidates rejected as already seen
	ErrorCount         int `json:"error_count"`          // fetch/content failures
}

// DuplicatePercentage returns duplicates / link_count * 100.
func (s CrawlStats) DuplicatePercentage() float64 {
	if s.LinkCount == 0 {
		return 0
	}
	return float64(s.LinkDuplicateCount) * 100 / float64(s.LinkCount)
}

// CrawlResult one successfully fetched page
type CrawlResult struct {
	URL      string `json:"url"`
	HTMLPath string `json:"html_path"` // stored-content reference
}

// PageRecord what the result store receives for every successful fetch
type PageRecord struct {
	RunID     string
	Index     int // zero-based success index
	URL       string
	Content   string
	FetchedAt time.Time
}

// CrawlConfig crawl settings
type CrawlConfig struct {
	MaxLinks        int           `json:"max_links" mapstructure:"max_links"`               // target successful fetches (default: 10)
	PolitenessDelay time.Duration `json:"politeness_delay" mapstructure:"politeness_delay"` // pause after every iteration (default: 1s)
	RequestTimeout  time.Duration `json:"request_timeout" mapstructure:"request_timeout"`   // per-request timeout (default: 5s)
	ScopePolicy     ScopePolicy   `json:"scope_policy" mapstructure:"scope_policy"`         // same-host filter (default: contains)
	MaxBodySize     int           `json:"max_body_size" mapstructure:"max_body_size"`       // response body cap in bytes, 0 = unlimited
}

// ConnectivityConfig connectivity monitor settings
type ConnectivityConfig struct {
	ProbeAddress    string        `json:"probe_address" mapstructure:"probe_address"`       // host:port dialed by the probe
	ProbeTimeout    time.Duration `json:"probe_timeout" mapstructure:"probe_timeout"`       // dial timeout
	RetryInterval   time.Duration `json:"retry_interval" mapstructure:"retry_interval"`     // wait between failed probes
	CheckInterfaces bool          `json:"check_interfaces" mapstructure:"check_interfaces"` // skip the dial when no interface is up
}

// Validate checks crawl settings
func (c *CrawlConfig) Validate() error {
	if c.MaxLinks < 1 {
		return fmt.Errorf("max_links must be a positive integer, got %d", c.MaxLinks)
	}
	if c.PolitenessDelay < 0 {
		return fmt.Errorf("politeness_delay must not be negative, got %s", c.PolitenessDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max_body_size must not be negative, got %d", c.MaxBodySize)
	}
	if _, err := ParseScopePolicy(string(c.ScopePolicy)); err != nil {
		return err
	}
	return nil
}

// Validate checks connectivity settings
func (c *ConnectivityConfig) Validate() error {
	if c.ProbeAddress == "" {
		return fmt.Errorf("connectivity probe_address must not be empty")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("connectivity probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("connectivity retry_interval must be positive, got %s", c.RetryInterval)
	}
	return nil
}

// ToJSON serializes the config snapshot stored in reports.
func (c CrawlConfig) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
