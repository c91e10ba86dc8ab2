// Package crawlers provides the building blocks of a single-host BFS crawl.
//
// # Overview
//
// The orchestrator in internal/core drives these pieces one URL at a time.
// Nothing here starts goroutines; Frontier is the only type shared across
// goroutines and it is guarded by a mutex.
//
// # Components
//
// ## Frontier
//
// FIFO queue of pending URLs plus the set of every URL ever admitted.
// The root is admitted on construction. Admit counts every candidate and
// every rejected repeat, so LinkCount == VisitedCount + DuplicateCount.
//
//	frontier := NewFrontier("https://example.com/")
//	frontier.Admit("https://example.com/about")
//	url, ok := frontier.Next()
//
// ## HTTPFetcher
//
// Colly based fetcher. A page counts only when the status is exactly 200
// and Content-Type contains text/html. Everything else becomes a tagged
// failure (bad-status, bad-content-type, network-error) instead of an error.
// Bodies are decoded according to Content-Encoding (gzip, deflate, br).
//
//	fetcher, err := NewHTTPFetcher(config, headerManager)
//	res := fetcher.Fetch(ctx, url)
//	if !res.OK() {
//		log.Println(res.Reason())
//	}
//
// ## LinkExtractor and ScopeMatcher
//
// LinkExtractor returns the absolute, fragment-free http(s) targets of every
// <a href> on a page, in document order, repeats included. ScopeMatcher
// decides which hosts belong to the crawl:
//
//   - contains: host contains the root host (default)
//   - exact: host equals the root host, port included
//   - subdomain: root host or any subdomain of it
//   - site: same registrable domain (public suffix list)
//
//	scope, err := NewScopeMatcher(models.ScopeContains, rootURL)
//	links, err := NewLinkExtractor(scope).Extract(html, pageURL)
//
// ## Connectivity
//
// NetMonitor dials a well known address (8.8.8.8:53 by default) and can
// skip the dial when no network interface is up. WaitForConnectivity blocks
// until the monitor reports the network reachable or ctx ends.
//
//	monitor := NewNetMonitor(DefaultConnectivityConfig())
//	if err := WaitForConnectivity(ctx, monitor, 5*time.Second); err != nil {
//		// shutting down
//	}
//
// # Configuration
//
//	crawl:
//	  max_links: 10
//	  politeness_delay: 1s
//	  request_timeout: 5s
//	  scope_policy: contains
//	connectivity:
//	  probe_address: 8.8.8.8:53
//	  retry_interval: 5s
package crawlers
