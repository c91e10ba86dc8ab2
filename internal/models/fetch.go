package models

import "fmt"

// FailureKind why a fetch did not produce a page
type FailureKind string

const (
	FailureBadStatus      FailureKind = "bad-status"
	FailureBadContentType FailureKind = "bad-content-type"
	FailureNetwork        FailureKind = "network-error"
)

// FetchResult outcome of a single GET.
// It is either Fetched (Failure empty, Body set) or FetchFailed (Failure set).
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        string
	Failure     FailureKind
	Err         error // underlying cause, set for failures only
	Truncated   bool  // body was cut at the configured size limit
}

// Fetched builds a successful result
func Fetched(url string, status int, contentType, body string) FetchResult {
	return FetchResult{URL: url, StatusCode: status, ContentType: contentType, Body: body}
}

// FetchFailed builds a failed result
func FetchFailed(url string, kind FailureKind, cause error) FetchResult {
	return FetchResult{URL: url, Failure: kind, Err: cause}
}

// OK reports whether the fetch produced an HTML page.
func (r FetchResult) OK() bool {
	return r.Failure == ""
}

// Reason describes the failure; empty for successes.
func (r FetchResult) Reason() string {
	if r.OK() {
		return ""
	}
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Failure, r.Err)
	}
	return string(r.Failure)
}
