package crawlers

import (
	"sync"
)

// Frontier pending-URL queue plus the set of every URL ever admitted.
// It is the only place that decides whether a URL is new, and it owns the
// link_count / link_duplicate_count counters that follow from that decision.
type Frontier struct {
	mu sync.Mutex

	pending []string
	head    int

	// visited holds admitted URLs, fetched or not
	visited map[string]struct{}

	linkCount      int
	duplicateCount int
}

// NewFrontier creates a frontier with root already admitted.
// The root counts as the first link seen.
func NewFrontier(root string) *Frontier {
	f := &Frontier{
		visited: make(map[string]struct{}),
	}
	f.Admit(root)
	return f
}

// Admit adds url to the visited set and the pending queue if it was never seen.
// It returns false, and counts a duplicate, when url was admitted before.
func (f *Frontier) Admit(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.linkCount++
	if _, seen := f.visited[url]; seen {
		f.duplicateCount++
		return false
	}

	f.visited[url] = struct{}{}
	f.pending = append(f.pending, url)
	return true
}

// Next pops the oldest pending URL. ok is false when nothing is pending.
func (f *Frontier) Next() (url string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head >= len(f.pending) {
		return "", false
	}

	url = f.pending[f.head]
	f.pending[f.head] = ""
	f.head++

	// drop the consumed prefix once it dominates the backing array
	if f.head > 1024 && f.head*2 > len(f.pending) {
		f.pending = append([]string(nil), f.pending[f.head:]...)
		f.head = 0
	}
	return url, true
}

// Size number of URLs admitted but not yet dequeued
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending) - f.head
}

// Seen reports whether url was ever admitted
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[url]
	return ok
}

// VisitedCount number of distinct URLs ever admitted
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// LinkCount Admit calls so far, root included
func (f *Frontier) LinkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.linkCount
}

// DuplicateCount Admit calls that returned false
func (f *Frontier) DuplicateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duplicateCount
}
