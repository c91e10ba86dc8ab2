package main

import (
	"fmt"

	"github.com/RecoveryAshes/domaincrawl/internal/core"
	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

// ValidateFlags checks the crawl target and the merged configuration
func ValidateFlags(targetURL, urlFile string, cfg *core.Config) error {
	if targetURL == "" && urlFile == "" {
		return fmt.Errorf("either --url or --url-file is required")
	}
	if targetURL != "" && urlFile != "" {
		return fmt.Errorf("--url and --url-file cannot be used together")
	}

	if targetURL != "" {
		if err := models.ValidateURL(targetURL); err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
	}

	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if cfg.Crawl.MaxLinks <= 0 {
		return fmt.Errorf("--max-links must be greater than 0, got %d", cfg.Crawl.MaxLinks)
	}
	if cfg.Crawl.PolitenessDelay < 0 {
		return fmt.Errorf("--delay must not be negative, got %s", cfg.Crawl.PolitenessDelay)
	}
	if cfg.Crawl.RequestTimeout <= 0 {
		return fmt.Errorf("--timeout must be greater than 0, got %s", cfg.Crawl.RequestTimeout)
	}

	return cfg.Validate()
}
