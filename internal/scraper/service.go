package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vendora/product-importer/internal/models"
	"github.com/vendora/product-importer/internal/parser"
)

// User-facing failure messages, kept in the storefront's language.
const (
	MsgUnsupportedURL    = "URL no soportada. Usa AliExpress o Alibaba."
	MsgHumanVerification = "No se pudo extraer información. La página puede requerir verificación humana."

	msgFetchFailedFmt = "Error al acceder: %d"
)

// Service runs the scrape pipeline: classify the URL, fetch the page, run
// every field extractor over the same HTML and assemble the result. Each
// call is self-contained; concurrent scrapes share nothing but the fetcher
// configuration.
type Service struct {
	fetcher Fetcher
	parser  parser.Parser
	logger  *slog.Logger
}

func NewService(fetcher Fetcher, p parser.Parser, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		parser:  p,
		logger:  logger.With("component", "scraper"),
	}
}

// Scrape returns a tagged result and never an error: every failure mode,
// including network-level ones, is folded into ScrapeResult.Error.
func (s *Service) Scrape(ctx context.Context, rawURL string) models.ScrapeResult {
	source := ClassifySource(rawURL)
	if source == models.SourceUnknown {
		s.logger.Info("rejected unsupported url", "url", rawURL)
		return models.ScrapeResult{Error: MsgUnsupportedURL}
	}

	html, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn("fetch failed", "url", rawURL, "error", err)
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode > 0 {
			return models.ScrapeResult{Error: fmt.Sprintf(msgFetchFailedFmt, fetchErr.StatusCode)}
		}
		return models.ScrapeResult{Error: err.Error()}
	}

	product, err := s.parser.ParseProductPage(html)
	if err != nil {
		s.logger.Warn("extraction failed", "url", rawURL, "error", err)
		return models.ScrapeResult{Error: MsgHumanVerification}
	}

	product.Source = source
	product.URL = rawURL
	if product.Description == "" {
		product.Description = "Producto importado: " + product.Title
	}

	s.logger.Info("scraped product",
		"url", rawURL,
		"source", source,
		"title", product.Title,
		"price", product.Price,
		"images", len(product.Images),
		"videos", len(product.Videos),
		"attributes", len(product.Attributes),
	)

	return models.ScrapeResult{Success: true, Data: product}
}
