package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/config"
	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/storage"
	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// empty working directory so no config.yaml is found
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Crawl.MaxLinks != 10 {
		t.Errorf("max_links = %d, want 10", cfg.Crawl.MaxLinks)
	}
	if cfg.Crawl.PolitenessDelay != time.Second {
		t.Errorf("politeness_delay = %s, want 1s", cfg.Crawl.PolitenessDelay)
	}
	if cfg.Crawl.RequestTimeout != 5*time.Second {
		t.Errorf("request_timeout = %s, want 5s", cfg.Crawl.RequestTimeout)
	}
	if cfg.Crawl.ScopePolicy != models.ScopeContains {
		t.Errorf("scope_policy = %s", cfg.Crawl.ScopePolicy)
	}
	if cfg.Connectivity.ProbeAddress != "8.8.8.8:53" || cfg.Connectivity.RetryInterval != 5*time.Second {
		t.Errorf("connectivity = %+v", cfg.Connectivity)
	}
	if cfg.StoreKind() != storage.KindFile {
		t.Errorf("store = %s", cfg.StoreKind())
	}
	if cfg.Output.ManifestName != "output.json" {
		t.Errorf("manifest_name = %s", cfg.Output.ManifestName)
	}
	if cfg.File != "" {
		t.Errorf("no file should be used, got %s", cfg.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
crawl:
  max_links: 25
  politeness_delay: 250ms
  scope_policy: subdomain
http:
  headers:
    User-Agent: FromFile/1.0
output:
  store: sqlite
`)

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Crawl.MaxLinks != 25 {
		t.Errorf("max_links = %d", cfg.Crawl.MaxLinks)
	}
	if cfg.Crawl.PolitenessDelay != 250*time.Millisecond {
		t.Errorf("politeness_delay = %s", cfg.Crawl.PolitenessDelay)
	}
	if cfg.Crawl.ScopePolicy != models.ScopeSubdomain {
		t.Errorf("scope_policy = %s", cfg.Crawl.ScopePolicy)
	}
	if cfg.StoreKind() != storage.KindSQLite {
		t.Errorf("store = %s", cfg.StoreKind())
	}
	// viper lowercases map keys
	if cfg.HTTP.Headers["user-agent"] != "FromFile/1.0" {
		t.Errorf("headers = %v", cfg.HTTP.Headers)
	}
	if cfg.File != path {
		t.Errorf("File = %s, want %s", cfg.File, path)
	}
	// untouched keys keep defaults
	if cfg.Crawl.RequestTimeout != 5*time.Second {
		t.Errorf("request_timeout = %s", cfg.Crawl.RequestTimeout)
	}
}

func TestLoadConfig_Template(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := config.WriteTemplate(path, false); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig(template): %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("template config invalid: %v", err)
	}
	if cfg.Crawl.MaxBodySize != 10485760 {
		t.Errorf("max_body_size = %d", cfg.Crawl.MaxBodySize)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "crawl:\n  max_links: 25\n  request_timeout: 9s\n")
	t.Setenv("DOMAINCRAWL_CRAWL_MAX_LINKS", "40")
	t.Setenv("DOMAINCRAWL_CRAWL_REQUEST_TIMEOUT", "7s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-links", 10, "")
	flags.Duration("timeout", 5*time.Second, "")
	if err := flags.Parse([]string{"--max-links", "3"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, flags)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Crawl.MaxLinks != 3 {
		t.Errorf("flag should win: max_links = %d", cfg.Crawl.MaxLinks)
	}
	if cfg.Crawl.RequestTimeout != 7*time.Second {
		t.Errorf("env should beat file for unset flag: request_timeout = %s", cfg.Crawl.RequestTimeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("explicit missing file should fail")
	}

	broken := writeConfig(t, "crawl: [unclosed\n")
	if _, err := LoadConfig(broken, nil); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Crawl:        models.CrawlConfig{MaxLinks: 1, RequestTimeout: time.Second, ScopePolicy: models.ScopeContains},
			Connectivity: models.ConnectivityConfig{ProbeAddress: "8.8.8.8:53", ProbeTimeout: time.Second, RetryInterval: time.Second},
			Logging:      LoggingConfig{Level: "info"},
			Output:       OutputConfig{BaseDir: "output", Store: "file"},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	tests := map[string]func(c *Config){
		"bad store":       func(c *Config) { c.Output.Store = "s3" },
		"empty base dir":  func(c *Config) { c.Output.BaseDir = "" },
		"negative batch":  func(c *Config) { c.Batch.Delay = -time.Second },
		"bad log level":   func(c *Config) { c.Logging.Level = "loud" },
		"zero max links":  func(c *Config) { c.Crawl.MaxLinks = 0 },
		"no probe target": func(c *Config) { c.Connectivity.ProbeAddress = "" },
		"no retry pause":  func(c *Config) { c.Connectivity.RetryInterval = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_LogAndStoreOptions(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "debug", LogDir: "l", Rotation: RotationConfig{MaxSize: 5, MaxBackups: 2, MaxAge: 7, Compress: true}},
		Output:  OutputConfig{BaseDir: "out", ManifestName: "m.json"},
	}

	lc := cfg.LogConfig()
	if lc.Level != "debug" || lc.LogDir != "l" || lc.MaxSize != 5 || !lc.Compress {
		t.Errorf("LogConfig = %+v", lc)
	}
	so := cfg.StoreOptions()
	if so.BaseDir != "out" || so.ManifestName != "m.json" {
		t.Errorf("StoreOptions = %+v", so)
	}
}

// chdir changes the working directory for the test and restores it on cleanup
// (stand-in for testing.T.Chdir, which needs Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
