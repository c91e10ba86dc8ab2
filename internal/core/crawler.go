package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/crawlers"
	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/storage"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

// Progress receives one tick per stored page
type Progress interface {
	Add(num int) error
}

// Option configures a Crawler
type Option func(*Crawler)

// WithFetcher replaces the colly fetcher
func WithFetcher(f crawlers.Fetcher) Option {
	return func(c *Crawler) { c.fetcher = f }
}

// WithMonitor replaces the TCP connectivity probe
func WithMonitor(m crawlers.ConnectivityMonitor) Option {
	return func(c *Crawler) { c.monitor = m }
}

// WithConnectivity sets probe and retry settings for the default monitor
func WithConnectivity(cfg models.ConnectivityConfig) Option {
	return func(c *Crawler) { c.connectivity = cfg }
}

// WithStore uses s instead of opening one from the output settings.
// The caller keeps ownership and closes it.
func WithStore(s storage.Store) Option {
	return func(c *Crawler) { c.store = s }
}

// WithOutput sets where the default store writes
func WithOutput(kind storage.Kind, opts storage.Options) Option {
	return func(c *Crawler) {
		c.storeKind = kind
		c.storeOpts = opts
	}
}

// WithHeaderProvider sets request headers for the default fetcher
func WithHeaderProvider(hp models.HeaderProvider) Option {
	return func(c *Crawler) { c.headerProvider = hp }
}

// WithProgress reports stored pages to p
func WithProgress(p Progress) Option {
	return func(c *Crawler) { c.progress = p }
}

// WithSummaryReport writes reports/summary.md next to the output
func WithSummaryReport(enabled bool) Option {
	return func(c *Crawler) { c.summaryReport = enabled }
}

// Crawler breadth-first crawl of one root, one page at a time.
// A Crawler runs once; create a new one per root.
type Crawler struct {
	rootURL string
	domain  string
	runID   string

	config       models.CrawlConfig
	connectivity models.ConnectivityConfig

	headerProvider models.HeaderProvider
	fetcher        crawlers.Fetcher
	monitor        crawlers.ConnectivityMonitor
	progress       Progress

	store         storage.Store
	ownsStore     bool
	storeKind     storage.Kind
	storeOpts     storage.Options
	summaryReport bool

	frontier  *crawlers.Frontier
	extractor *crawlers.LinkExtractor

	mu         sync.RWMutex
	state      models.CrawlState
	results    []models.CrawlResult
	errorCount int
}

// NewCrawler validates rootURL and prepares the frontier with the root admitted.
func NewCrawler(rootURL string, config models.CrawlConfig, opts ...Option) (*Crawler, error) {
	if err := models.ValidateURL(rootURL); err != nil {
		return nil, err
	}
	root, err := models.StripFragment(rootURL)
	if err != nil {
		return nil, err
	}

	if config.ScopePolicy == "" {
		config.ScopePolicy = models.ScopeContains
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawl config: %w", err)
	}

	parsed, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("parse root URL: %w", err)
	}

	scope, err := crawlers.NewScopeMatcher(config.ScopePolicy, root)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		rootURL:      root,
		domain:       parsed.Host,
		runID:        models.NewRunID(),
		config:       config,
		connectivity: crawlers.DefaultConnectivityConfig(),
		storeKind:    storage.KindFile,
		frontier:     crawlers.NewFrontier(root),
		extractor:    crawlers.NewLinkExtractor(scope),
		state:        models.StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Crawl runs the loop until the frontier is empty, max_links pages are
// stored, or ctx is cancelled. The manifest is written in all three cases.
// The returned report is non-nil whenever the loop started.
func (c *Crawler) Crawl(ctx context.Context) (*models.CrawlReport, error) {
	if c.State() != models.StateIdle {
		return nil, fmt.Errorf("crawler for %s already ran", c.rootURL)
	}
	if err := c.setup(); err != nil {
		return nil, err
	}
	if c.ownsStore {
		defer func() {
			if err := c.store.Close(); err != nil {
				utils.Warnf("close store: %v", err)
			}
		}()
	}

	startTime := time.Now()
	utils.Infof("crawl started: %s", c.rootURL)
	utils.Debugf("run %s: max_links=%d scope=%s delay=%s timeout=%s",
		c.runID, c.config.MaxLinks, c.config.ScopePolicy, c.config.PolitenessDelay, c.config.RequestTimeout)

	// persistence must finish even when the crawl is being interrupted
	storeCtx := context.WithoutCancel(ctx)

	interrupted := false
	// URL taken off the frontier but never processed because of a shutdown
	unprocessed := 0
	var fatal error

	c.setState(models.StateRunning)
	for c.successCount() < c.config.MaxLinks {
		target, ok := c.frontier.Next()
		if !ok {
			break
		}

		utils.Infof("crawling %d of %d: %s", c.successCount()+1, c.config.MaxLinks, target)

		c.setState(models.StateFetching)
		if err := crawlers.WaitForConnectivity(ctx, c.monitor, c.connectivity.RetryInterval); err != nil {
			interrupted = true
			unprocessed = 1
			break
		}

		res := c.fetcher.Fetch(ctx, target)
		if !res.OK() && ctx.Err() != nil {
			interrupted = true
			unprocessed = 1
			break
		}

		if !res.OK() {
			c.setState(models.StateSkipping)
			c.recordFailure(res)
		} else if err := c.handlePage(storeCtx, res); err != nil {
			fatal = err
			break
		}

		c.setState(models.StateRunning)
		if err := sleepContext(ctx, c.config.PolitenessDelay); err != nil {
			interrupted = true
			break
		}
	}
	c.setState(models.StateTerminated)

	if interrupted {
		utils.Warnf("crawl interrupted, saving partial results")
	}

	report := c.buildReport(startTime, interrupted, unprocessed)
	if err := c.store.SaveManifest(storeCtx, report); err != nil {
		if fatal != nil {
			utils.Errorf("saving manifest after failure: %v", err)
			return report, fatal
		}
		return report, fmt.Errorf("save manifest: %w", err)
	}
	if fatal != nil {
		return report, fatal
	}

	if c.summaryReport {
		reporter := utils.NewReporter(c.storeOpts.BaseDir, storage.DirName(c.domain))
		if path, err := reporter.GenerateSummary(report); err != nil {
			utils.Warnf("summary report failed: %v", err)
		} else {
			utils.Debugf("summary report: %s", path)
		}
	}

	c.logSummary(report)
	return report, nil
}

// handlePage stores a fetched page, records it and feeds its links back.
func (c *Crawler) handlePage(ctx context.Context, res models.FetchResult) error {
	c.setState(models.StateStoring)

	index := c.successCount()
	ref, err := c.store.SavePage(ctx, models.PageRecord{
		RunID:     c.runID,
		Index:     index,
		URL:       res.URL,
		Content:   res.Body,
		FetchedAt: time.Now(),
	})
	if err != nil {
		utils.Logger.Error().Err(err).Str("url", res.URL).Int("index", index).Msg("persisting page failed")
		return fmt.Errorf("persist page %s: %w", res.URL, err)
	}

	c.mu.Lock()
	c.results = append(c.results, models.CrawlResult{URL: res.URL, HTMLPath: ref})
	c.mu.Unlock()

	if c.progress != nil {
		_ = c.progress.Add(1)
	}

	c.setState(models.StateExtracting)
	links, err := c.extractor.Extract(res.Body, res.URL)
	if err != nil {
		utils.Warnf("link extraction failed for %s: %v", res.URL, err)
		return nil
	}

	admitted := 0
	for _, link := range links {
		if c.frontier.Admit(link) {
			admitted++
		}
	}
	utils.Debugf("%s: %d links, %d new", res.URL, len(links), admitted)
	return nil
}

func (c *Crawler) recordFailure(res models.FetchResult) {
	c.mu.Lock()
	c.errorCount++
	c.mu.Unlock()

	event := utils.Logger.Error().Str("url", res.URL).Str("kind", string(res.Failure))
	if res.StatusCode != 0 {
		event = event.Int("status", res.StatusCode)
	}
	if res.ContentType != "" {
		event = event.Str("content_type", res.ContentType)
	}
	event.Err(res.Err).Msg("fetch failed")
}

// buildReport snapshots the run. unprocessed URLs count as pending.
func (c *Crawler) buildReport(startTime time.Time, interrupted bool, unprocessed int) *models.CrawlReport {
	endTime := time.Now()

	c.mu.RLock()
	results := make([]models.CrawlResult, len(c.results))
	copy(results, c.results)
	c.mu.RUnlock()

	storeKind := string(c.storeKind)
	if !c.ownsStore {
		storeKind = fmt.Sprintf("%T", c.store)
	}

	return &models.CrawlReport{
		RunID:        c.runID,
		RootURL:      c.rootURL,
		Domain:       c.domain,
		MaxLinks:     c.config.MaxLinks,
		StoreKind:    storeKind,
		StartTime:    startTime,
		EndTime:      endTime,
		Duration:     endTime.Sub(startTime).Seconds(),
		Stats:        c.Stats(),
		Results:      results,
		PendingCount: c.frontier.Size() + unprocessed,
		Interrupted:  interrupted,
		Config:       c.config,
	}
}

func (c *Crawler) logSummary(report *models.CrawlReport) {
	utils.Infof("crawl finished in %.2fs", report.Duration)
	utils.Infof("duplicate links: %.2f%% (%d of %d)",
		report.Stats.DuplicatePercentage(), report.Stats.LinkDuplicateCount, report.Stats.LinkCount)
	utils.Infof("errors: %d", report.Stats.ErrorCount)
	utils.Infof("links seen: %d", report.Stats.LinkCount)
	utils.Infof("left in queue: %d", report.PendingCount)
	utils.Infof("pages crawled: %d of %d", report.PagesCrawled(), report.MaxLinks)
}

// setup fills in collaborators not supplied through options.
func (c *Crawler) setup() error {
	if c.fetcher == nil {
		f, err := crawlers.NewHTTPFetcher(c.config, c.headerProvider)
		if err != nil {
			return err
		}
		c.fetcher = f
	}

	if c.monitor == nil {
		if err := c.connectivity.Validate(); err != nil {
			return err
		}
		c.monitor = crawlers.NewNetMonitor(c.connectivity)
	}

	if c.store == nil {
		s, err := storage.New(c.storeKind, c.domain, c.storeOpts)
		if err != nil {
			return fmt.Errorf("open %s store: %w", c.storeKind, err)
		}
		c.store = s
		c.ownsStore = true
	}
	if c.storeOpts.BaseDir == "" {
		c.storeOpts.BaseDir = "output"
	}
	return nil
}

// sleepContext waits d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Crawler) setState(s models.CrawlState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Crawler) successCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// State current orchestrator state
func (c *Crawler) State() models.CrawlState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Stats counters so far
func (c *Crawler) Stats() models.CrawlStats {
	c.mu.RLock()
	errorCount := c.errorCount
	c.mu.RUnlock()

	return models.CrawlStats{
		LinkCount:          c.frontier.LinkCount(),
		LinkDuplicateCount: c.frontier.DuplicateCount(),
		ErrorCount:         errorCount,
	}
}

// Results stored pages in fetch order
func (c *Crawler) Results() []models.CrawlResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CrawlResult, len(c.results))
	copy(out, c.results)
	return out
}

// Frontier queue and visited set of this run
func (c *Crawler) Frontier() *crawlers.Frontier {
	return c.frontier
}

// RootURL fragment-stripped root
func (c *Crawler) RootURL() string {
	return c.rootURL
}

// Domain root host, the output directory key
func (c *Crawler) Domain() string {
	return c.domain
}

// RunID identifier of this run
func (c *Crawler) RunID() string {
	return c.runID
}

// IsInterrupted reports whether err came from a shutdown rather than a fault
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
