package scraper

import (
	"context"
	"fmt"
)

// FetchError reports a failed page retrieval. StatusCode is zero for
// network-level failures that never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw HTML body for a product URL. Implementations do
// not retry; a non-2xx status is a terminal failure for the call.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
