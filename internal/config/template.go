// Package config ships the configuration template and locates config files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/adrg/xdg"
)

const (
	// AppName directory name under the XDG config home
	AppName = "domaincrawl"

	// DefaultConfigFile path written by "config init" without arguments
	DefaultConfigFile = "configs/config.yaml"

	// MaxConfigFileSize largest accepted config file (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

//go:embed config_template.yaml
var defaultTemplate string

// Template embedded default configuration
func Template() string {
	return defaultTemplate
}

// XDGConfigDir config directory under $XDG_CONFIG_HOME
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SearchPaths directories searched for config.yaml, in order
func SearchPaths() []string {
	paths := []string{"./configs", ".", XDGConfigDir()}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName))
	}
	return paths
}

// WriteTemplate writes the template to path.
// An existing file is kept unless force is set; written reports whether it was written.
func WriteTemplate(path string, force bool) (written bool, err error) {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	} else if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("check config file [%s]: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create config directory [%s]: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(defaultTemplate), 0644); err != nil {
		return false, fmt.Errorf("write config file [%s]: %w", path, err)
	}
	return true, nil
}

// EnsureConfigExists writes the template to path if nothing is there yet.
func EnsureConfigExists(path string) error {
	_, err := WriteTemplate(path, false)
	return err
}

// ValidateFileSize rejects config files above MaxConfigFileSize
func ValidateFileSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file [%s]: %w", path, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: path,
			Cause: fmt.Errorf("config file too large: %d bytes (max %d bytes)",
				info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}
