package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

// BatchCrawler crawls several roots one after another
type BatchCrawler struct {
	config        models.CrawlConfig
	batchDelay    time.Duration
	continueOnErr bool
	options       []Option
}

// BatchResult outcome for one root
type BatchResult struct {
	URL         string
	Success     bool
	Error       error
	Report      *models.CrawlReport
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary outcome of the whole batch
type BatchSummary struct {
	TotalURLs     int
	SuccessCount  int
	FailCount     int
	TotalPages    int
	TotalErrors   int
	TotalDuration float64
	Interrupted   bool
	Results       []BatchResult
}

// NewBatchCrawler creates a batch crawler. opts apply to every per-root Crawler.
func NewBatchCrawler(config models.CrawlConfig, batchDelay time.Duration, continueOnErr bool, opts ...Option) *BatchCrawler {
	return &BatchCrawler{
		config:        config,
		batchDelay:    batchDelay,
		continueOnErr: continueOnErr,
		options:       opts,
	}
}

// CrawlBatch crawls urls in order and stops early on cancellation,
// or on the first failure when continue-on-error is off.
func (bc *BatchCrawler) CrawlBatch(ctx context.Context, urls []string) *BatchSummary {
	utils.Infof("batch crawl started: %d roots", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}

	startTime := time.Now()

	for i, targetURL := range urls {
		utils.Infof("==================== [%d/%d] ====================", i+1, len(urls))
		utils.Infof("root: %s", targetURL)

		result := bc.crawlSingleURL(ctx, targetURL)
		summary.Results = append(summary.Results, result)

		if result.Report != nil {
			summary.TotalPages += result.Report.PagesCrawled()
			summary.TotalErrors += result.Report.Stats.ErrorCount
			if result.Report.Interrupted {
				summary.Interrupted = true
			}
		}

		if result.Success {
			summary.SuccessCount++
		} else {
			summary.FailCount++
			utils.Errorf("crawl of %s failed: %v", targetURL, result.Error)

			if !bc.continueOnErr {
				utils.Warn("batch aborted (--continue-on-error=false)")
				break
			}
		}

		if summary.Interrupted {
			break
		}

		// no pause after the last root
		if i < len(urls)-1 && bc.batchDelay > 0 {
			utils.Debugf("waiting %s before the next root", bc.batchDelay)
			if err := sleepContext(ctx, bc.batchDelay); err != nil {
				summary.Interrupted = true
				break
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()
	bc.printSummary(summary)

	return summary
}

// crawlSingleURL crawls one root
func (bc *BatchCrawler) crawlSingleURL(ctx context.Context, targetURL string) BatchResult {
	result := BatchResult{
		URL:         targetURL,
		ProcessedAt: time.Now(),
	}

	startTime := time.Now()

	crawler, err := NewCrawler(targetURL, bc.config, bc.options...)
	if err != nil {
		result.Error = fmt.Errorf("create crawler: %w", err)
		result.Duration = time.Since(startTime).Seconds()
		return result
	}

	report, err := crawler.Crawl(ctx)
	result.Report = report
	result.Duration = time.Since(startTime).Seconds()
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	return result
}

// printSummary logs the batch totals and the failed roots
func (bc *BatchCrawler) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("batch summary")
	utils.Info("==================================================")
	utils.Infof("roots: %d", summary.TotalURLs)
	utils.Infof("succeeded: %d", summary.SuccessCount)
	utils.Infof("failed: %d", summary.FailCount)
	utils.Infof("pages stored: %d", summary.TotalPages)
	utils.Infof("fetch errors: %d", summary.TotalErrors)
	utils.Infof("total time: %.2fs", summary.TotalDuration)
	if summary.Interrupted {
		utils.Warn("batch interrupted before all roots were crawled")
	}
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("failed roots:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.URL, result.Error)
			}
		}
	}
}
