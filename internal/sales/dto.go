package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

// CartLine is one requested product and quantity.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateSaleInput is the validated request for a new sale.
type CreateSaleInput struct {
	Items         []CartLine
	PaymentMethod string
	UserID        *uuid.UUID
	ActorRole     enums.UserRole
}

// SaleDTO is the sale header returned to clients.
type SaleDTO struct {
	ID            uuid.UUID  `json:"id"`
	Date          time.Time  `json:"date"`
	TotalAmount   string     `json:"total_amount"`
	PaymentMethod string     `json:"payment_method"`
	UserID        *uuid.UUID `json:"userId,omitempty"`
}

// SaleItemDTO is one sold line. Product is only populated on detail reads.
type SaleItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"saleId"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     string          `json:"price"`
	Subtotal  string          `json:"subtotal"`
	Product   *SaleProductDTO `json:"product,omitempty"`
}

// SaleProductDTO is the current catalog entry behind a sold line.
type SaleProductDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    string    `json:"price"`
}

// SaleResult pairs a sale with its lines.
type SaleResult struct {
	Sale  SaleDTO       `json:"sale"`
	Items []SaleItemDTO `json:"items"`
}

// SaleList is one page of sales.
type SaleList struct {
	Sales      []SaleResult `json:"sales"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// SummaryFilters bound the summary window: From inclusive, To exclusive.
type SummaryFilters struct {
	From *time.Time
	To   *time.Time
}

// SummaryTotals is the raw aggregate from storage.
type SummaryTotals struct {
	Count int64
	Total decimal.Decimal
}

// SalesSummary reports count and revenue for visible sales.
type SalesSummary struct {
	Count       int64      `json:"count"`
	TotalAmount string     `json:"total_amount"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

// ListSalesInput carries pagination for the sales list.
type ListSalesInput struct {
	Pagination pagination.Params
}

// NewSaleResult maps a sale and its lines into the response shape.
func NewSaleResult(sale *models.Sale, items []models.SaleItem) *SaleResult {
	if sale == nil {
		return nil
	}
	result := &SaleResult{
		Sale: SaleDTO{
			ID:            sale.ID,
			Date:          sale.Date,
			TotalAmount:   sale.TotalAmount.StringFixed(2),
			PaymentMethod: sale.PaymentMethod.String(),
			UserID:        sale.UserID,
		},
		Items: make([]SaleItemDTO, 0, len(items)),
	}
	for _, item := range items {
		dto := SaleItemDTO{
			ID:        item.ID,
			SaleID:    item.SaleID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
			Subtotal:  item.Subtotal().StringFixed(2),
		}
		if item.Product != nil {
			dto.Product = &SaleProductDTO{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Category: item.Product.Category.String(),
				Price:    item.Product.Price.StringFixed(2),
			}
		}
		result.Items = append(result.Items, dto)
	}
	return result
}
