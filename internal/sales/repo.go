package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateSale inserts the header only; lines go through CreateSaleItems.
func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *repository) CreateSaleItems(ctx context.Context, items []models.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) FindSaleDetail(ctx context.Context, saleID uuid.UUID, scope Visibility) (*models.Sale, error) {
	var sale models.Sale
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.line_no ASC").Order("sale_items.id ASC")
		}).
		Preload("Items.Product").
		Where("sales.id = ?", saleID)
	err := scope.apply(query).First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales pages through visible sales, newest first.
func (r *repository) ListSales(ctx context.Context, scope Visibility, params pagination.Params) ([]models.Sale, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := scope.apply(r.db.WithContext(ctx).Model(&models.Sale{}))
	if cursor != nil {
		query = query.Where("(sales.date < ?) OR (sales.date = ? AND sales.id < ?)", cursor.At, cursor.At, cursor.ID)
	}

	var rows []models.Sale
	err = query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.line_no ASC").Order("sale_items.id ASC")
		}).
		Order("sales.date DESC").
		Order("sales.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	page, more := pagination.Trim(rows, params.Limit)
	next := ""
	if more {
		last := page[len(page)-1]
		next = pagination.EncodeCursor(pagination.Cursor{At: last.Date, ID: last.ID})
	}
	return page, next, nil
}

type summaryRow struct {
	SaleCount   int64
	TotalAmount decimal.Decimal
}

func (r *repository) Summarize(ctx context.Context, scope Visibility, filters SummaryFilters) (*SummaryTotals, error) {
	query := scope.apply(r.db.WithContext(ctx).Model(&models.Sale{}))
	if filters.From != nil {
		query = query.Where("sales.date >= ?", filters.From.UTC())
	}
	if filters.To != nil {
		query = query.Where("sales.date < ?", filters.To.UTC())
	}

	var row summaryRow
	err := query.
		Select("COUNT(*) AS sale_count, COALESCE(SUM(sales.total_amount), 0) AS total_amount").
		Scan(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &SummaryTotals{Count: row.SaleCount, Total: row.TotalAmount.Round(2)}, nil
}
