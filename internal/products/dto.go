package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients. Prices are
// rendered with two decimals.
type ProductDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price.StringFixed(2),
		StockQuantity: product.StockQuantity,
		Category:      product.Category.String(),
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
