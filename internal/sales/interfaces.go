package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

// Repository defines persistence operations for the sales and sale_items tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	CreateSaleItems(ctx context.Context, items []models.SaleItem) error
	FindSaleDetail(ctx context.Context, saleID uuid.UUID, scope Visibility) (*models.Sale, error)
	ListSales(ctx context.Context, scope Visibility, params pagination.Params) ([]models.Sale, string, error)
	Summarize(ctx context.Context, scope Visibility, filters SummaryFilters) (*SummaryTotals, error)
}
