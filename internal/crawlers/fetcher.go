package crawlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
	"github.com/gocolly/colly/v2"
)

const responseCtxKey = "domaincrawl.response"

// Fetcher performs one GET and classifies the outcome.
type Fetcher interface {
	Fetch(ctx context.Context, url string) models.FetchResult
}

// HTTPFetcher colly-backed Fetcher. Requests run synchronously, one at a time.
type HTTPFetcher struct {
	collector   *colly.Collector
	headers     http.Header
	timeout     time.Duration
	maxBodySize int // 0 means unlimited
}

// NewHTTPFetcher creates a fetcher using config timeouts and the provider's headers.
// headerProvider may be nil, in which case colly's defaults apply.
func NewHTTPFetcher(config models.CrawlConfig, headerProvider models.HeaderProvider) (*HTTPFetcher, error) {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var headers http.Header
	if headerProvider != nil {
		h, err := headerProvider.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("load request headers: %w", err)
		}
		headers = h
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	// the frontier owns dedup, so colly must not skip URLs it saw before
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.MaxBodySize = config.MaxBodySize
	if ua := headers.Get("User-Agent"); ua != "" {
		c.UserAgent = ua
	}

	c.SetClient(&http.Client{Transport: transport})
	c.SetRequestTimeout(timeout)

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseCtxKey, r)
	})

	utils.Debugf("fetcher ready: timeout=%s max_body_size=%d", timeout, config.MaxBodySize)

	return &HTTPFetcher{
		collector: c,
		headers:     headers,
		timeout:     timeout,
		maxBodySize: config.MaxBodySize,
	}, nil
}

// Fetch issues a single GET for url.
// Success needs status 200 and a Content-Type containing text/html.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) models.FetchResult {
	if err := ctx.Err(); err != nil {
		return models.FetchFailed(url, models.FailureNetwork, err)
	}

	reqCtx := colly.NewContext()
	var hdr http.Header
	if f.headers != nil {
		hdr = f.headers.Clone()
	}

	if err := f.collector.Request(http.MethodGet, url, nil, reqCtx, hdr); err != nil {
		return models.FetchFailed(url, models.FailureNetwork, err)
	}

	resp, ok := reqCtx.GetAny(responseCtxKey).(*colly.Response)
	if !ok || resp == nil {
		return models.FetchFailed(url, models.FailureNetwork, fmt.Errorf("no response received"))
	}

	if resp.StatusCode != http.StatusOK {
		return models.FetchResult{
			URL:        url,
			StatusCode: resp.StatusCode,
			Failure:    models.FailureBadStatus,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	contentType := ""
	if resp.Headers != nil {
		contentType = resp.Headers.Get("Content-Type")
	}
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return models.FetchResult{
			URL:         url,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Failure:     models.FailureBadContentType,
			Err:         fmt.Errorf("content type %q", contentType),
		}
	}

	body := resp.Body
	truncated := f.maxBodySize > 0 && len(body) >= f.maxBodySize
	if truncated {
		utils.Warnf("%s: body cut at max_body_size (%d bytes), stored page is incomplete", url, f.maxBodySize)
	}
	if resp.Headers != nil {
		if encoding := resp.Headers.Get("Content-Encoding"); encoding != "" {
			decoded, err := decompressResponse(encoding, body)
			if err != nil {
				utils.Warnf("decompress %s (encoding=%s) failed, keeping raw body: %v", url, encoding, err)
			} else {
				body = decoded
			}
		}
	}

	res := models.Fetched(url, resp.StatusCode, contentType, string(body))
	res.Truncated = truncated
	return res
}
