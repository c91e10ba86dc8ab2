package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/config"
	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/storage"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefix of environment overrides, e.g. DOMAINCRAWL_CRAWL_MAX_LINKS
const EnvPrefix = "DOMAINCRAWL"

// Config application configuration
type Config struct {
	Crawl        models.CrawlConfig        `mapstructure:"crawl"`
	Connectivity models.ConnectivityConfig `mapstructure:"connectivity"`
	HTTP         HTTPConfig                `mapstructure:"http"`
	Logging      LoggingConfig             `mapstructure:"logging"`
	Output       OutputConfig              `mapstructure:"output"`
	Batch        BatchConfig               `mapstructure:"batch"`

	// file the values were read from, empty when only defaults applied
	File string `mapstructure:"-"`
}

// HTTPConfig request settings
type HTTPConfig struct {
	Headers map[string]string `mapstructure:"headers"`
}

// LoggingConfig logging settings
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig log rotation settings
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig output settings
type OutputConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	Store         string `mapstructure:"store"`
	ManifestName  string `mapstructure:"manifest_name"`
	SummaryReport bool   `mapstructure:"summary_report"`
}

// BatchConfig settings for --url-file runs
type BatchConfig struct {
	Delay           time.Duration `mapstructure:"delay"`
	ContinueOnError bool          `mapstructure:"continue_on_error"`
}

// flagKeys command line flags that override config keys
var flagKeys = map[string]string{
	"max-links":         "crawl.max_links",
	"delay":             "crawl.politeness_delay",
	"timeout":           "crawl.request_timeout",
	"scope":             "crawl.scope_policy",
	"output":            "output.base_dir",
	"store":             "output.store",
	"log-level":         "logging.level",
	"batch-delay":       "batch.delay",
	"continue-on-error": "batch.continue_on_error",
}

// LoadConfig reads configuration. Precedence: flag > env > file > default.
// configPath selects a file explicitly; otherwise config.yaml is searched
// in config.SearchPaths. A missing searched file is not an error.
// flags may be nil.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.Warnf("loading .env failed: %v", err)
	}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range config.SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	cfg := &Config{File: v.ConfigFileUsed()}
	if cfg.File != "" {
		if err := config.ValidateFileSize(cfg.File); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, &models.ConfigError{FilePath: cfg.File, Cause: fmt.Errorf("decode config: %w", err)}
	}
	if cfg.HTTP.Headers == nil {
		cfg.HTTP.Headers = make(map[string]string)
	}

	return cfg, nil
}

// setDefaults default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_links", 10)
	v.SetDefault("crawl.politeness_delay", "1s")
	v.SetDefault("crawl.request_timeout", "5s")
	v.SetDefault("crawl.scope_policy", string(models.ScopeContains))
	v.SetDefault("crawl.max_body_size", 10*1024*1024)

	v.SetDefault("connectivity.probe_address", "8.8.8.8:53")
	v.SetDefault("connectivity.probe_timeout", "5s")
	v.SetDefault("connectivity.retry_interval", "5s")
	v.SetDefault("connectivity.check_interfaces", true)

	v.SetDefault("http.headers", map[string]string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.store", string(storage.KindFile))
	v.SetDefault("output.manifest_name", storage.DefaultManifestName)
	v.SetDefault("output.summary_report", true)

	v.SetDefault("batch.delay", "0s")
	v.SetDefault("batch.continue_on_error", true)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Crawl.Validate(); err != nil {
		return err
	}
	if err := c.Connectivity.Validate(); err != nil {
		return err
	}
	if _, err := storage.ParseKind(c.Output.Store); err != nil {
		return err
	}
	if c.Output.BaseDir == "" {
		return fmt.Errorf("output.base_dir must not be empty")
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("batch.delay must not be negative, got %s", c.Batch.Delay)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}
	return nil
}

// StoreKind parsed output.store
func (c *Config) StoreKind() storage.Kind {
	kind, err := storage.ParseKind(c.Output.Store)
	if err != nil {
		return storage.KindFile
	}
	return kind
}

// StoreOptions output settings for storage.New
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		BaseDir:      c.Output.BaseDir,
		ManifestName: c.Output.ManifestName,
	}
}

// LogConfig logging settings for utils.InitLogger
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}
