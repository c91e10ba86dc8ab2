package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/nao1215/markdown"
	"github.com/schollz/progressbar/v3"
)

const summaryFileName = "summary.md"

// Reporter writes the human-readable crawl summary
type Reporter struct {
	outputDir string
	domain    string
}

// NewReporter creates a reporter for <outputDir>/<domain>/reports
func NewReporter(outputDir string, domain string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
		domain:    domain,
	}
}

// ReportsDir directory holding the report files
func (r *Reporter) ReportsDir() string {
	return filepath.Join(r.outputDir, r.domain, "reports")
}

// GenerateSummary writes reports/summary.md and returns its path.
func (r *Reporter) GenerateSummary(report *models.CrawlReport) (string, error) {
	reportsDir := r.ReportsDir()
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(reportsDir, summaryFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create summary file: %w", err)
	}
	defer f.Close()

	if err := WriteSummary(f, report); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	Debugf("summary written: %s", path)
	return path, nil
}

// WriteSummary renders report as markdown to w.
func WriteSummary(w io.Writer, report *models.CrawlReport) error {
	md := markdown.NewMarkdown(w)

	md.H1("Crawl Summary: " + report.Domain)
	md.PlainText("")

	status := "Complete"
	if report.Interrupted {
		status = "Interrupted (partial results)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Root URL", report.RootURL},
			{"Started", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Duration", fmt.Sprintf("%.2fs", report.Duration)},
			{"Status", status},
		},
	})
	md.PlainText("")

	md.H2("Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Pages crawled", fmt.Sprintf("%d / %d", report.PagesCrawled(), report.MaxLinks)},
			{"Links seen", strconv.Itoa(report.Stats.LinkCount)},
			{"Duplicate links", strconv.Itoa(report.Stats.LinkDuplicateCount)},
			{"Duplicate percentage", fmt.Sprintf("%.2f%%", report.Stats.DuplicatePercentage())},
			{"Errors", strconv.Itoa(report.Stats.ErrorCount)},
			{"Left in queue", strconv.Itoa(report.PendingCount)},
		},
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	if len(report.Results) == 0 {
		md.PlainText("No pages were fetched.")
	} else {
		rows := make([][]string, 0, len(report.Results))
		for i, res := range report.Results {
			rows = append(rows, []string{strconv.Itoa(i), res.URL, "`" + res.HTMLPath + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "URL", "Content"},
			Rows:   rows,
		})
	}

	return md.Build()
}

// NewProgressBar progress bar over successful fetches
func NewProgressBar(max int, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
