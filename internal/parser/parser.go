package parser

import (
	"github.com/vendora/product-importer/internal/models"
)

// Parser extracts product fields from raw marketplace HTML. Every method
// except ParseProductPage degrades to a zero value when nothing is found.
type Parser interface {
	ParseProductPage(html string) (*models.ScrapedProduct, error)
	ExtractTitle(html string) (string, error)
	ExtractDescription(html string) string
	ExtractPrice(html string) float64
	ExtractImages(html string) []string
	ExtractVideos(html string) []string
}
