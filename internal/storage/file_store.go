package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

// FileStore writes one HTML file per page under <base>/<host>/ and a JSON
// manifest next to them. The full report goes to reports/crawl_report.json.
type FileStore struct {
	dir          string
	manifestName string
}

// NewFileStore creates <baseDir>/<domain>/ and its reports directory.
func NewFileStore(baseDir, domain, manifestName string) (*FileStore, error) {
	if manifestName == "" {
		manifestName = DefaultManifestName
	}

	dir := filepath.Join(baseDir, DirName(domain))
	if err := os.MkdirAll(filepath.Join(dir, "reports"), 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	utils.Debugf("file store at %s", dir)
	return &FileStore{dir: dir, manifestName: manifestName}, nil
}

// Dir host output directory
func (s *FileStore) Dir() string {
	return s.dir
}

// ManifestPath path of the url -> content manifest
func (s *FileStore) ManifestPath() string {
	return filepath.Join(s.dir, s.manifestName)
}

// ReportPath path of the full JSON report
func (s *FileStore) ReportPath() string {
	return filepath.Join(s.dir, "reports", "crawl_report.json")
}

// SavePage writes page.Content to <index>.html and returns the file path.
func (s *FileStore) SavePage(ctx context.Context, page models.PageRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, strconv.Itoa(page.Index)+".html")
	if err := writeFileAtomic(path, []byte(page.Content)); err != nil {
		return "", fmt.Errorf("save page %d (%s): %w", page.Index, page.URL, err)
	}
	return path, nil
}

// SaveManifest writes the result list and the full report.
func (s *FileStore) SaveManifest(ctx context.Context, report *models.CrawlReport) error {
	results := report.Results
	if results == nil {
		results = []models.CrawlResult{}
	}

	manifest, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(s.ManifestPath(), manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := writeFileAtomic(s.ReportPath(), data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	utils.Debugf("manifest written: %s (%d entries)", s.ManifestPath(), len(results))
	return nil
}

// Close no-op for the file store
func (s *FileStore) Close() error {
	return nil
}

// LoadManifest reads a manifest written by SaveManifest
func LoadManifest(path string) ([]models.CrawlResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var results []models.CrawlResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return results, nil
}

// writeFileAtomic writes via a temp file in the same directory, then renames.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
