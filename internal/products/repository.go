package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the product and holds its row lock until the
// surrounding transaction ends. SQLite ignores the locking clause; its single
// writer gives the same serialization.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock removes qty units only while enough stock remains. It reports
// false when the guard rejected the write.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID and reports whether a row was removed.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected > 0, res.Error
}

// CountSaleReferences counts sale lines pointing at the product.
func (r *Repository) CountSaleReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Where("product_id = ?", id).
		Count(&count).
		Error
	return count, err
}

type productListQuery struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

// ListProducts pages through the catalog newest first.
func (r *Repository) ListProducts(ctx context.Context, query productListQuery) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if query.Filters.Category != nil {
		qb = qb.Where("category = ?", *query.Filters.Category)
	}
	if search := strings.TrimSpace(query.Filters.Query); search != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if query.Filters.InStockOnly {
		qb = qb.Where("stock_quantity > 0")
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}

	var rows []models.Product
	err = qb.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	page, more := pagination.Trim(rows, query.Pagination.Limit)
	next := ""
	if more {
		last := page[len(page)-1]
		next = pagination.EncodeCursor(pagination.Cursor{At: last.CreatedAt, ID: last.ID})
	}
	return page, next, nil
}
