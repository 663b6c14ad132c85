package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/product-importer/internal/models"
)

type fakeStore struct {
	lastInput models.CreateProductInput
	err       error
	calls     int
}

func (s *fakeStore) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.CreatedProduct, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.CreatedProduct{ID: "prod-123"}, nil
}

func scrapedFixture() *models.ScrapedProduct {
	return &models.ScrapedProduct{
		Title:       "Gorra Azul",
		Description: "Una gorra",
		Details:     "Material: Lana",
		Price:       12.5,
		Images:      []string{"https://ae01.alicdn.com/kf/a.jpg", "https://ae01.alicdn.com/kf/b.jpg"},
		Videos:      []string{"https://video.example.com/v.mp4"},
		Source:      models.SourceAliExpress,
	}
}

func TestImportUsesScrapedValues(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	result := imp.Import(context.Background(), scrapedFixture(), models.ImportOverrides{CategoryID: 3})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "prod-123", result.ProductID)

	assert.Equal(t, "Gorra Azul", store.lastInput.Name)
	assert.Equal(t, "Una gorra", store.lastInput.Description)
	assert.Equal(t, "Material: Lana", store.lastInput.Details)
	assert.Equal(t, 12.5, store.lastInput.PriceUSD)
	assert.False(t, store.lastInput.IsOffer)
	assert.Equal(t, 10, store.lastInput.Stock)
	assert.Equal(t, "https://ae01.alicdn.com/kf/a.jpg", store.lastInput.Image)
	assert.Len(t, store.lastInput.Images, 2)
	assert.Len(t, store.lastInput.Videos, 1)
	assert.Equal(t, int64(3), store.lastInput.CategoryID)
}

func TestImportAppliesOverrides(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	name := "Gorra Premium"
	price := 19.99
	description := "Edición limitada"

	result := imp.Import(context.Background(), scrapedFixture(), models.ImportOverrides{
		CustomName:        &name,
		CustomPrice:       &price,
		CustomDescription: &description,
		CategoryID:        7,
	})

	require.True(t, result.Success)
	assert.Equal(t, "Gorra Premium", store.lastInput.Name)
	assert.Equal(t, 19.99, store.lastInput.PriceUSD)
	assert.Equal(t, "Edición limitada", store.lastInput.Description)
}

func TestImportPriceFallback(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	scraped := scrapedFixture()
	scraped.Price = 0

	result := imp.Import(context.Background(), scraped, models.ImportOverrides{CategoryID: 3})

	require.True(t, result.Success)
	assert.Equal(t, 10.0, store.lastInput.PriceUSD)
}

func TestImportPlaceholderImage(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	scraped := scrapedFixture()
	scraped.Images = nil

	result := imp.Import(context.Background(), scraped, models.ImportOverrides{CategoryID: 3})

	require.True(t, result.Success)
	assert.Equal(t, "https://via.placeholder.com/400x500?text=Sin+Imagen", store.lastInput.Image)
}

func TestImportRequiresCategory(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	result := imp.Import(context.Background(), scrapedFixture(), models.ImportOverrides{})

	assert.False(t, result.Success)
	assert.Equal(t, "La categoría es obligatoria.", result.Error)
	assert.Zero(t, store.calls)
}

func TestImportRequiresProduct(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, nil)

	result := imp.Import(context.Background(), nil, models.ImportOverrides{CategoryID: 3})

	assert.False(t, result.Success)
	assert.Zero(t, store.calls)
}

func TestImportPropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("conexión rechazada")}
	imp := New(store, nil)

	result := imp.Import(context.Background(), scrapedFixture(), models.ImportOverrides{CategoryID: 3})

	assert.False(t, result.Success)
	assert.Equal(t, "conexión rechazada", result.Error)
	assert.Empty(t, result.ProductID)
}
