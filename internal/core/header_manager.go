package core

import (
	"net/http"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

const (
	// DefaultUserAgent default User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// DefaultAccept default Accept, HTML first
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// HeaderManager merges request headers from defaults, config and command line.
// Implements models.HeaderProvider.
type HeaderManager struct {
	// defaults hardcoded headers
	defaults http.Header

	// config headers from the http.headers config key
	config http.Header

	// cli headers from -H flags
	cli http.Header

	validator *utils.HeaderValidator
	redactor  *utils.HeaderRedactor
}

// NewHeaderManager creates a header manager.
// configHeaders comes from the config file, cliHeaders are "Name: Value" strings.
// It fails when a cli header has no colon or an empty name.
func NewHeaderManager(configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:  getDefaultHeaders(),
		config:    make(http.Header),
		cli:       make(http.Header),
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
	}

	// viper lowercases map keys; Set canonicalizes them back
	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}

	if len(hm.config) > 0 {
		utils.Debugf("loaded %d headers from config: %s", len(hm.config), hm.redactor.RedactToString(hm.config))
	}

	return hm, nil
}

// getDefaultHeaders built-in headers. Accept-Encoding is left to the transport.
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent": []string{DefaultUserAgent},
		"Accept":     []string{DefaultAccept},
	}
}

// Validate checks every header layer: default, config, cli.
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("default header validation failed: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("config header validation failed: %v", err)
		return err
	}

	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("command line header validation failed: %v", err)
		return err
	}

	utils.Debugf("all HTTP headers valid")
	return nil
}

// GetMergedHeaders merges by priority default < config < cli
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)

	for name, values := range hm.defaults {
		result[name] = values
	}
	for name, values := range hm.config {
		result[name] = values
	}
	for name, values := range hm.cli {
		result[name] = values
	}

	return result
}

// GetSafeHeaders merged headers redacted for logging
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders validates and returns the effective headers.
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}
