// Package storage persists fetched pages and the end-of-crawl manifest.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

// Store durable output of one crawl run.
//
// SavePage is called once per successful fetch, in fetch order, and returns
// a reference to the stored content. SaveManifest is called once at the end,
// also after an interrupted crawl. Any error is fatal to the run.
type Store interface {
	SavePage(ctx context.Context, page models.PageRecord) (string, error)
	SaveManifest(ctx context.Context, report *models.CrawlReport) error
	Close() error
}

// Kind store backend name
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// DefaultManifestName file name of the manifest in the file store
const DefaultManifestName = "output.json"

// Options store settings shared by all backends
type Options struct {
	BaseDir      string // root output directory (default: output)
	ManifestName string // manifest file name (default: output.json)
}

// ParseKind parses a backend name. Empty selects KindFile.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindFile, nil
	case KindFile, KindSQLite:
		return k, nil
	default:
		return "", fmt.Errorf("unknown store %q (valid: file, sqlite)", s)
	}
}

// New opens the store of the given kind for domain.
func New(kind Kind, domain string, opts Options) (Store, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = "output"
	}
	if opts.ManifestName == "" {
		opts.ManifestName = DefaultManifestName
	}

	switch kind {
	case KindFile, "":
		return NewFileStore(opts.BaseDir, domain, opts.ManifestName)
	case KindSQLite:
		return OpenSQLiteStore(opts.BaseDir, domain)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// DirName directory name for a host; ports become "_<port>".
func DirName(host string) string {
	name := strings.ToLower(strings.TrimSpace(host))
	name = strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(name)
	if name == "" {
		return "unknown-host"
	}
	return name
}
