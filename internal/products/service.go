package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

const maxNameLength = 200

// maxPrice is the largest value numeric(10,2) can hold.
var maxPrice = decimal.RequireFromString("99999999.99")

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Price         *decimal.Decimal
	StockQuantity *int
	Category      *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// service implements the product service.
type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateStock(input.StockQuantity); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          name,
		Price:         input.Price.Round(2),
		StockQuantity: input.StockQuantity,
		Category:      enums.NormalizeProductCategory(input.Category),
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies a partial update under the product's row lock.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Name == nil && input.Price == nil && input.StockQuantity == nil && input.Category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one field is required")
	}

	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return mapReadError(err, productID)
		}

		if input.Name != nil {
			name, err := validateName(*input.Name)
			if err != nil {
				return err
			}
			product.Name = name
		}
		if input.Price != nil {
			if err := validatePrice(*input.Price); err != nil {
				return err
			}
			product.Price = input.Price.Round(2)
		}
		if input.StockQuantity != nil {
			if err := validateStock(*input.StockQuantity); err != nil {
				return err
			}
			product.StockQuantity = *input.StockQuantity
		}
		if input.Category != nil {
			product.Category = enums.NormalizeProductCategory(*input.Category)
		}

		saved, err := txRepo.UpdateProduct(ctx, product)
		if err != nil {
			return mapWriteError(err, "db: update product")
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes a product that no sale line references.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByIDForUpdate(ctx, productID); err != nil {
			return mapReadError(err, productID)
		}

		refs, err := txRepo.CountSaleReferences(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count sale references")
		}
		if refs > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product has recorded sales and cannot be deleted").
				WithDetails(map[string]any{"product_id": productID, "sale_items": refs})
		}

		if _, err := txRepo.DeleteProduct(ctx, productID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product has recorded sales and cannot be deleted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapReadError(err, productID)
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if input.Filters.Category != nil {
		normalized := enums.NormalizeProductCategory(input.Filters.Category.String())
		input.Filters.Category = &normalized
	}
	rows, next, err := s.repo.ListProducts(ctx, productListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be zero or greater")
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must have at most two decimal places")
	}
	if price.GreaterThan(maxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price exceeds the supported maximum")
	}
	return nil
}

func validateStock(qty int) error {
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be zero or greater")
	}
	return nil
}

func mapReadError(err error, productID uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product with ID %s not found", productID))
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
}

func mapWriteError(err error, message string) error {
	if db.IsCheckViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "product values violate constraints")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
