package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// Sale is the header of a completed register transaction. UserID is nil for
// sales recorded before cashier attribution existed.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Date          time.Time           `gorm:"column:date;not null;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null;check:chk_sales_total_amount,total_amount >= 0"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:Cash"`
	UserID        *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	return nil
}

// SaleItem is one sold line, numbered in submission order. Price is the unit price captured when the sale
// was recorded and never follows later product price changes.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	LineNo    int             `gorm:"column:line_no;not null"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_sale_items_quantity,quantity > 0"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:chk_sale_items_price,price >= 0"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Subtotal returns price × quantity rounded to currency precision.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}
