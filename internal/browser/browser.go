package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/vendora/product-importer/internal/scraper"
)

// Browser is the headless-browser fetch strategy: it loads the page in
// Chromium so that JavaScript-built markup is present in the HTML handed to
// the extractors. Selected by configuration; it never falls back to the
// plain HTTP strategy within a call.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      scraper.DefaultUserAgent,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "es-ES,es;q=0.9,en;q=0.8",
		TimezoneID:     "America/Caracas",
		Locale:         "es-ES",
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = scraper.DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--user-agent=" + opts.UserAgent,
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:       &opts.UserAgent,
		AcceptDownloads: playwright.Bool(false),
		Locale:          &opts.Locale,
		TimezoneId:      &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": opts.AcceptLanguage,
		},
	}

	browserCtx, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: browserCtx,
		timeout: opts.Timeout,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// Fetch navigates to the URL and returns the rendered document.
func (b *Browser) Fetch(ctx context.Context, rawURL string) (string, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return "", &scraper.FetchError{URL: rawURL, Err: fmt.Errorf("failed to create page: %w", err)}
	}
	defer page.Close()

	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	resp, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return "", &scraper.FetchError{URL: rawURL, Err: err}
	}

	if resp != nil {
		status := resp.Status()
		if status < 200 || status > 299 {
			return "", &scraper.FetchError{URL: rawURL, StatusCode: status}
		}
	}

	html, err := page.Content()
	if err != nil {
		return "", &scraper.FetchError{URL: rawURL, Err: fmt.Errorf("failed to read page content: %w", err)}
	}

	b.logger.Debug("rendered page", "url", rawURL, "bytes", len(html))
	return html, nil
}

func (b *Browser) Close() error {
	if err := b.context.Close(); err != nil {
		b.logger.Warn("failed to close browser context", "error", err)
	}
	if err := b.browser.Close(); err != nil {
		b.logger.Warn("failed to close browser", "error", err)
	}
	return b.pw.Stop()
}
