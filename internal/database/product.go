package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vendora/product-importer/internal/models"
)

// EventTypeProductImported is emitted whenever an imported product lands in
// the catalog.
const EventTypeProductImported = "PRODUCT_IMPORTED"

// CreateProduct inserts a catalog product and records a PRODUCT_IMPORTED
// outbox event in the same transaction, so downstream consumers never see a
// product without its event or vice versa.
func (db *DB) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.CreatedProduct, error) {
	id := uuid.New()
	now := time.Now()

	imagesJSON, err := json.Marshal(input.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	videosJSON, err := json.Marshal(input.Videos)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal videos: %w", err)
	}

	outbox := NewOutboxRepository(db)

	err = db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO products (
				id, name, description, details, price_usd, is_offer,
				stock, image, images, videos, category_id, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
			)`

		if _, err := tx.Exec(ctx, query,
			id, input.Name, input.Description, input.Details, input.PriceUSD,
			input.IsOffer, input.Stock, input.Image, imagesJSON, videosJSON,
			input.CategoryID, now,
		); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}

		payload, err := json.Marshal(map[string]interface{}{
			"product_id":  id.String(),
			"name":        input.Name,
			"price_usd":   input.PriceUSD,
			"category_id": input.CategoryID,
			"image":       input.Image,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}

		return outbox.InsertWithTx(ctx, tx, &OutboxEvent{
			AggregateType: "product",
			AggregateID:   id.String(),
			EventType:     EventTypeProductImported,
			Payload:       payload,
		})
	})
	if err != nil {
		return nil, err
	}

	return &models.CreatedProduct{ID: id.String(), CreatedAt: now}, nil
}
