package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
)

// LinkExtractor pulls same-host links out of fetched HTML.
type LinkExtractor struct {
	scope *ScopeMatcher
}

// NewLinkExtractor creates an extractor filtering by scope
func NewLinkExtractor(scope *ScopeMatcher) *LinkExtractor {
	return &LinkExtractor{scope: scope}
}

// Extract returns the in-scope links of every <a href> in document order.
// Relative references, the empty one included, are resolved against baseURL
// and fragments are dropped.
// Repeats are kept; deduplication belongs to the frontier.
func (e *LinkExtractor) Extract(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %s: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		// an empty href refers to the page itself
		href = strings.TrimSpace(href)

		resolved, err := base.Parse(href)
		if err != nil {
			utils.Debugf("skipping malformed href %q on %s: %v", href, baseURL, err)
			return
		}

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		resolved.Fragment = ""
		resolved.RawFragment = ""

		if !e.scope.InScope(resolved) {
			return
		}
		links = append(links, resolved.String())
	})

	return links, nil
}
