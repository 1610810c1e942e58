package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// Product is a sellable item together with its on-hand stock.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name          string                `gorm:"column:name;not null"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null;check:chk_products_price,price >= 0"`
	StockQuantity int                   `gorm:"column:stock_quantity;not null;default:0;check:chk_products_stock_quantity,stock_quantity >= 0"`
	Category      enums.ProductCategory `gorm:"column:category;type:text;not null;default:Other;index"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
