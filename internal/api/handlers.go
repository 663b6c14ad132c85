package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/product-importer/internal/models"
)

// ScrapeService runs the scrape pipeline for one URL.
type ScrapeService interface {
	Scrape(ctx context.Context, url string) models.ScrapeResult
}

// ImportService persists a reviewed scraped product.
type ImportService interface {
	Import(ctx context.Context, scraped *models.ScrapedProduct, overrides models.ImportOverrides) models.ImportResult
}

type Handlers struct {
	scraper  ScrapeService
	importer ImportService
	logger   *slog.Logger
}

func NewHandlers(scraper ScrapeService, importer ImportService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		scraper:  scraper,
		importer: importer,
		logger:   logger.With("component", "api"),
	}
}

// Routes mounts the handlers on a chi router.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", h.Scrape)
		r.Post("/import", h.Import)
	})
}

// ScrapeRequest is the body for POST /api/v1/scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ImportRequest is the body for POST /api/v1/import. The product is the
// scraped record as returned by the scrape endpoint, possibly edited by the
// operator before committing.
type ImportRequest struct {
	Product           *models.ScrapedProduct `json:"product"`
	CategoryID        int64                  `json:"category_id"`
	CustomName        *string                `json:"custom_name,omitempty"`
	CustomPrice       *float64               `json:"custom_price,omitempty"`
	CustomDescription *string                `json:"custom_description,omitempty"`
}

func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := h.scraper.Scrape(r.Context(), req.URL)
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.importer.Import(r.Context(), req.Product, models.ImportOverrides{
		CustomName:        req.CustomName,
		CustomPrice:       req.CustomPrice,
		CustomDescription: req.CustomDescription,
		CategoryID:        req.CategoryID,
	})
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
