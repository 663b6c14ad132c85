package importer

import (
	"context"
	"log/slog"

	"github.com/vendora/product-importer/internal/models"
)

const (
	defaultPriceUSD  = 10.0
	defaultStock     = 10
	placeholderImage = "https://via.placeholder.com/400x500?text=Sin+Imagen"

	msgCategoryRequired  = "La categoría es obligatoria."
	msgNothingToImport   = "No hay datos de producto para importar."
	msgImportFailedFixed = "Error al importar"
)

// ProductCreator persists a new catalog product and returns its generated
// identifier.
type ProductCreator interface {
	CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.CreatedProduct, error)
}

// Importer maps a scraped product plus user overrides into the store's
// create shape. Overrides win over scraped values, scraped values over the
// fixed defaults.
type Importer struct {
	store  ProductCreator
	logger *slog.Logger
}

func New(store ProductCreator, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:  store,
		logger: logger.With("component", "importer"),
	}
}

// Import persists the scraped product and returns a tagged result. Store
// failures are surfaced through ImportResult.Error, never as a panic.
func (i *Importer) Import(ctx context.Context, scraped *models.ScrapedProduct, overrides models.ImportOverrides) models.ImportResult {
	if scraped == nil {
		return models.ImportResult{Error: msgNothingToImport}
	}
	if overrides.CategoryID <= 0 {
		return models.ImportResult{Error: msgCategoryRequired}
	}

	input := BuildCreateInput(scraped, overrides)

	created, err := i.store.CreateProduct(ctx, input)
	if err != nil {
		i.logger.Error("product creation failed", "name", input.Name, "error", err)
		msg := err.Error()
		if msg == "" {
			msg = msgImportFailedFixed
		}
		return models.ImportResult{Error: msg}
	}

	i.logger.Info("imported product",
		"product_id", created.ID,
		"name", input.Name,
		"category_id", input.CategoryID,
		"price_usd", input.PriceUSD,
	)

	return models.ImportResult{Success: true, ProductID: created.ID}
}

// BuildCreateInput resolves the final product values from scraped data and
// overrides.
func BuildCreateInput(scraped *models.ScrapedProduct, overrides models.ImportOverrides) models.CreateProductInput {
	name := scraped.Title
	if overrides.CustomName != nil && *overrides.CustomName != "" {
		name = *overrides.CustomName
	}

	description := scraped.Description
	if overrides.CustomDescription != nil && *overrides.CustomDescription != "" {
		description = *overrides.CustomDescription
	}

	price := defaultPriceUSD
	switch {
	case overrides.CustomPrice != nil && *overrides.CustomPrice > 0:
		price = *overrides.CustomPrice
	case scraped.Price > 0:
		price = scraped.Price
	}

	image := placeholderImage
	if len(scraped.Images) > 0 {
		image = scraped.Images[0]
	}

	return models.CreateProductInput{
		Name:        name,
		Description: description,
		Details:     scraped.Details,
		PriceUSD:    price,
		IsOffer:     false,
		Stock:       defaultStock,
		Image:       image,
		Images:      scraped.Images,
		Videos:      scraped.Videos,
		CategoryID:  overrides.CategoryID,
	}
}
