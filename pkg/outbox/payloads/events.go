package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleCreatedEvent is published once per committed sale.
type SaleCreatedEvent struct {
	SaleID        uuid.UUID       `json:"saleId"`
	UserID        *uuid.UUID      `json:"userId,omitempty"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Items         []SaleLine      `json:"items"`
}

// SaleLine mirrors a persisted sale item.
type SaleLine struct {
	SaleItemID uuid.UUID       `json:"saleItemId"`
	ProductID  uuid.UUID       `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// ProductStockLowEvent signals that a sale left a product at or under the
// restock threshold.
type ProductStockLowEvent struct {
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	StockRemaining int       `json:"stockRemaining"`
	Threshold      int       `json:"threshold"`
	SaleID         uuid.UUID `json:"saleId"`
}
