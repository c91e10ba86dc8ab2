package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

// DBFileName SQLite database file inside the host directory
const DBFileName = "crawl.db"

// ErrNotFound requested page or run is not in the database
var ErrNotFound = errors.New("not found")

// SQLiteStore keeps pages and run reports in <base>/<host>/crawl.db.
// Several runs can share one database; rows are keyed by run ID.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteStore opens or creates the database for domain.
func OpenSQLiteStore(baseDir, domain string) (*SQLiteStore, error) {
	dir := filepath.Join(baseDir, DirName(domain))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	utils.Debugf("sqlite store at %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		pages INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		interrupted INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		url TEXT NOT NULL,
		content TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		UNIQUE(run_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Path database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// SavePage inserts the page and returns "<db path>#<run>/<index>".
func (s *SQLiteStore) SavePage(ctx context.Context, page models.PageRecord) (string, error) {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO pages (run_id, idx, url, content, fetched_at)
	VALUES (?, ?, ?, ?, ?)
	`,
		page.RunID,
		page.Index,
		page.URL,
		page.Content,
		fetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert page %d (%s): %w", page.Index, page.URL, err)
	}

	return PageRef(s.dbPath, page.RunID, page.Index), nil
}

// SaveManifest upserts the run row with the full report.
func (s *SQLiteStore) SaveManifest(ctx context.Context, report *models.CrawlReport) error {
	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	interrupted := 0
	if report.Interrupted {
		interrupted = 1
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO runs (run_id, root_url, domain, started_at, ended_at, pages, errors, interrupted, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		ended_at = excluded.ended_at,
		pages = excluded.pages,
		errors = excluded.errors,
		interrupted = excluded.interrupted,
		report_json = excluded.report_json
	`,
		report.RunID,
		report.RootURL,
		report.Domain,
		report.StartTime.UTC().Format(time.RFC3339Nano),
		report.EndTime.UTC().Format(time.RFC3339Nano),
		report.PagesCrawled(),
		report.Stats.ErrorCount,
		interrupted,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.RunID, err)
	}
	return nil
}

// LoadPage reads one stored page.
func (s *SQLiteStore) LoadPage(ctx context.Context, runID string, index int) (models.PageRecord, error) {
	page := models.PageRecord{RunID: runID, Index: index}
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
	SELECT url, content, fetched_at FROM pages WHERE run_id = ? AND idx = ?
	`, runID, index).Scan(&page.URL, &page.Content, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return page, fmt.Errorf("page %s/%d: %w", runID, index, ErrNotFound)
	}
	if err != nil {
		return page, fmt.Errorf("load page %s/%d: %w", runID, index, err)
	}

	page.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)
	return page, nil
}

// LoadReport reads the report saved for runID.
func (s *SQLiteStore) LoadReport(ctx context.Context, runID string) (*models.CrawlReport, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	report := &models.CrawlReport{}
	if err := report.FromJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", runID, err)
	}
	return report, nil
}

// CountPages number of pages stored for runID.
func (s *SQLiteStore) CountPages(ctx context.Context, runID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PageRef content reference for a page stored in a database
func PageRef(dbPath, runID string, index int) string {
	return fmt.Sprintf("%s#%s/%d", dbPath, runID, index)
}
