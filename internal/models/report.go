package models

import (
	"encoding/json"
	"time"
)

// CrawlReport everything the result store receives at crawl end
type CrawlReport struct {
	// run info
	RunID     string `json:"run_id"`
	RootURL   string `json:"root_url"`
	Domain    string `json:"domain"`
	MaxLinks  int    `json:"max_links"`
	StoreKind string `json:"store,omitempty"`

	// timing
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // seconds

	// outcome
	Stats        CrawlStats    `json:"stats"`
	Results      []CrawlResult `json:"results"`
	PendingCount int           `json:"pending_count"` // frontier size at termination
	Interrupted  bool          `json:"interrupted"`   // stopped by a shutdown signal

	// config snapshot
	Config CrawlConfig `json:"config"`
}

// PagesCrawled number of successful fetches
func (r *CrawlReport) PagesCrawled() int {
	return len(r.Results)
}

// ToJSON serializes the report
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON deserializes the report
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
