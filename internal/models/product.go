package models

import (
	"time"
)

// SourcePlatform identifies the marketplace a product URL belongs to.
type SourcePlatform string

const (
	SourceAliExpress SourcePlatform = "aliexpress"
	SourceAlibaba    SourcePlatform = "alibaba"
	SourceUnknown    SourcePlatform = "unknown"
)

// ScrapedProduct holds the fields extracted from a marketplace product page.
// Title is the only mandatory field; everything else is best-effort.
type ScrapedProduct struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Details     string            `json:"details"`
	Price       float64           `json:"price"`
	Images      []string          `json:"images"`
	Videos      []string          `json:"videos"`
	Attributes  map[string]string `json:"attributes"`
	Source      SourcePlatform    `json:"source"`
	URL         string            `json:"url"`
	ScrapedAt   time.Time         `json:"scraped_at"`
}

// ScrapeResult is the tagged outcome of a scrape call. Extraction problems
// are reported through Error, never through a panic or a raw error value.
type ScrapeResult struct {
	Success bool            `json:"success"`
	Data    *ScrapedProduct `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ImportOverrides carries user corrections applied on top of a scraped
// product before it is persisted. CategoryID is mandatory.
type ImportOverrides struct {
	CustomName        *string  `json:"custom_name,omitempty"`
	CustomPrice       *float64 `json:"custom_price,omitempty"`
	CustomDescription *string  `json:"custom_description,omitempty"`
	CategoryID        int64    `json:"category_id"`
}

// CreateProductInput is the shape the product store expects.
type CreateProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Details     string   `json:"details"`
	PriceUSD    float64  `json:"price_usd"`
	IsOffer     bool     `json:"is_offer"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
	CategoryID  int64    `json:"category_id"`
}

// CreatedProduct is returned by the product store after a successful insert.
type CreatedProduct struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportResult is the tagged outcome of an import call.
type ImportResult struct {
	Success   bool   `json:"success"`
	ProductID string `json:"product_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
