package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultUserAgent mimics a common desktop Chrome build. Marketplace pages
// serve a challenge wall to anything that looks like a plain HTTP client.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultAcceptLanguage = "es-ES,es;q=0.9,en;q=0.8"

// HTTPFetcher performs a direct GET with browser-like headers.
type HTTPFetcher struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
}

func NewHTTPFetcher(client *http.Client, userAgent, acceptLanguage string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if acceptLanguage == "" {
		acceptLanguage = defaultAcceptLanguage
	}
	return &HTTPFetcher{
		client:         client,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	return string(body), nil
}

// RenderProxyFetcher routes the request through a rendering proxy that
// executes the page's JavaScript before returning HTML. It is selected by
// configuration when an API key is present; there is no fallback between
// fetch strategies within a single call.
type RenderProxyFetcher struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	countryCode string
}

func NewRenderProxyFetcher(client *http.Client, endpoint, apiKey, countryCode string) *RenderProxyFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if countryCode == "" {
		countryCode = "us"
	}
	return &RenderProxyFetcher{
		client:      client,
		endpoint:    endpoint,
		apiKey:      apiKey,
		countryCode: countryCode,
	}
}

func (f *RenderProxyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	proxyURL, err := f.buildURL(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	return string(body), nil
}

func (f *RenderProxyFetcher) buildURL(target string) (string, error) {
	base, err := url.Parse(f.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid proxy endpoint: %w", err)
	}

	query := base.Query()
	query.Set("api_key", f.apiKey)
	query.Set("url", target)
	query.Set("render", "true")
	query.Set("country_code", f.countryCode)
	base.RawQuery = query.Encode()

	return base.String(), nil
}
