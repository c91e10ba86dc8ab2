package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"golang.org/x/net/publicsuffix"
)

// ScopeMatcher decides whether a candidate URL belongs to the crawl root.
type ScopeMatcher struct {
	policy models.ScopePolicy

	// root host with port, lowercased
	rootHost string
	// root host without port, lowercased
	rootHostname string
	// registrable domain of the root, empty for IPs and single-label hosts
	rootSite string
}

// NewScopeMatcher builds a matcher for rootURL under policy.
func NewScopeMatcher(policy models.ScopePolicy, rootURL string) (*ScopeMatcher, error) {
	p, err := models.ParseScopePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("parse root URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("root URL has no host: %s", rootURL)
	}

	m := &ScopeMatcher{
		policy:       p,
		rootHost:     strings.ToLower(u.Host),
		rootHostname: strings.ToLower(u.Hostname()),
	}
	if site, err := publicsuffix.EffectiveTLDPlusOne(m.rootHostname); err == nil {
		m.rootSite = site
	}
	return m, nil
}

// Policy active scope policy
func (m *ScopeMatcher) Policy() models.ScopePolicy {
	return m.policy
}

// RootHost host used as the scope reference
func (m *ScopeMatcher) RootHost() string {
	return m.rootHost
}

// InScope reports whether u is on the same host as the root under the active policy.
func (m *ScopeMatcher) InScope(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	if host == "" {
		return false
	}

	switch m.policy {
	case models.ScopeExact:
		return host == m.rootHost

	case models.ScopeSubdomain:
		hostname := strings.ToLower(u.Hostname())
		return hostname == m.rootHostname || strings.HasSuffix(hostname, "."+m.rootHostname)

	case models.ScopeSite:
		hostname := strings.ToLower(u.Hostname())
		if m.rootSite == "" {
			return hostname == m.rootHostname
		}
		site, err := publicsuffix.EffectiveTLDPlusOne(hostname)
		return err == nil && site == m.rootSite

	default:
		return strings.Contains(host, m.rootHost)
	}
}
