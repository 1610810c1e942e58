package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	product "github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/metrics"
	"github.com/angelmondragon/pos-backend/pkg/outbox"
	"github.com/angelmondragon/pos-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

const storageFailureMessage = "sale could not be completed, please try again"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service records sales and serves sale history.
type Service interface {
	CreateSale(ctx context.Context, input CreateSaleInput) (*SaleResult, error)
	GetSale(ctx context.Context, viewer Viewer, saleID uuid.UUID) (*SaleResult, error)
	ListSales(ctx context.Context, viewer Viewer, input ListSalesInput) (*SaleList, error)
	Summary(ctx context.Context, viewer Viewer, filters SummaryFilters) (*SalesSummary, error)
}

// ServiceParams groups the collaborators of the sales service.
type ServiceParams struct {
	DB       txRunner
	Repo     Repository
	Products *product.Repository
	Outbox   outboxPublisher
	Config   config.SalesConfig
	Metrics  *metrics.SaleMetrics
	Logger   *logger.Logger
}

type service struct {
	tx       txRunner
	repo     Repository
	products *product.Repository
	outbox   outboxPublisher
	cfg      config.SalesConfig
	metrics  *metrics.SaleMetrics
	logg     *logger.Logger
}

// NewService builds the sales service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		outbox:   params.Outbox,
		cfg:      params.Config,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

type stockLevel struct {
	product   *models.Product
	remaining int
}

// CreateSale runs the whole sale in one transaction: every line is checked and
// decremented under its row lock, then the header, the lines and the outbox
// events are written. Any failure rolls everything back.
func (s *service) CreateSale(ctx context.Context, input CreateSaleInput) (*SaleResult, error) {
	started := time.Now()
	if err := s.validate(input); err != nil {
		s.metrics.ObserveFailed(string(pkgerrors.CodeValidation), time.Since(started))
		return nil, err
	}

	if s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}

	paymentMethod := enums.NormalizePaymentMethod(input.PaymentMethod)
	var (
		sale  *models.Sale
		items []models.SaleItem
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		inventory := s.products.WithTx(tx)
		salesRepo := s.repo.WithTx(tx)

		total := decimal.Zero
		staged := make([]models.SaleItem, 0, len(input.Items))
		levels := make([]*stockLevel, 0, len(input.Items))
		byProduct := make(map[uuid.UUID]*stockLevel, len(input.Items))

		for i, line := range input.Items {
			current, err := inventory.FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product with ID %s not found", line.ProductID)).
						WithDetails(map[string]any{"product_id": line.ProductID})
				}
				return err
			}
			if current.StockQuantity < line.Quantity {
				return insufficientStock(current, line.Quantity)
			}

			subtotal := current.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			total = total.Add(subtotal)
			staged = append(staged, models.SaleItem{
				ProductID: current.ID,
				LineNo:    i + 1,
				Quantity:  line.Quantity,
				Price:     current.Price,
			})

			ok, err := inventory.DecrementStock(ctx, current.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("Stock for %s changed during the sale", current.Name)).
					WithDetails(map[string]any{"product_id": current.ID})
			}

			remaining := current.StockQuantity - line.Quantity
			if level, seen := byProduct[current.ID]; seen {
				level.remaining = remaining
			} else {
				level = &stockLevel{product: current, remaining: remaining}
				byProduct[current.ID] = level
				levels = append(levels, level)
			}
		}

		header := &models.Sale{
			Date:          time.Now().UTC(),
			TotalAmount:   total,
			PaymentMethod: paymentMethod,
			UserID:        input.UserID,
		}
		created, err := salesRepo.CreateSale(ctx, header)
		if err != nil {
			return err
		}
		for i := range staged {
			staged[i].SaleID = created.ID
		}
		if err := salesRepo.CreateSaleItems(ctx, staged); err != nil {
			return err
		}

		if err := s.emitEvents(ctx, tx, input, created, staged, levels); err != nil {
			return err
		}

		sale = created
		items = staged
		return nil
	})
	if err != nil {
		mapped := s.mapError(ctx, err)
		s.metrics.ObserveFailed(string(mapped.Code()), time.Since(started))
		return nil, mapped
	}

	s.metrics.ObserveCreated(paymentMethod.String(), len(items), time.Since(started))
	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"total_amount":   sale.TotalAmount.StringFixed(2),
		"payment_method": sale.PaymentMethod,
		"line_count":     len(items),
	})
	s.logg.Info(logCtx, "sale recorded")

	return NewSaleResult(sale, items), nil
}

func (s *service) validate(input CreateSaleInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Sale must contain at least one item")
	}
	if s.cfg.MaxItems > 0 && len(input.Items) > s.cfg.MaxItems {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Sale cannot contain more than %d items", s.cfg.MaxItems))
	}
	for i, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "Each item requires a product id").
				WithDetails(map[string]any{"index": i})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be a positive integer").
				WithDetails(map[string]any{"index": i, "product_id": line.ProductID, "quantity": line.Quantity})
		}
	}
	return nil
}

func insufficientStock(p *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("Insufficient stock for %s. Available: %d", p.Name, p.StockQuantity)).
		WithDetails(map[string]any{
			"product_id":   p.ID,
			"product_name": p.Name,
			"available":    p.StockQuantity,
			"requested":    requested,
		})
}

func (s *service) emitEvents(ctx context.Context, tx *gorm.DB, input CreateSaleInput, sale *models.Sale, items []models.SaleItem, levels []*stockLevel) error {
	var actor *outbox.ActorRef
	if input.UserID != nil {
		actor = &outbox.ActorRef{UserID: *input.UserID, Role: input.ActorRole.String()}
	}

	lines := make([]payloads.SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, payloads.SaleLine{
			SaleItemID: item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.Price,
		})
	}
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventSaleCreated,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Actor:         actor,
		OccurredAt:    sale.Date,
		Data: payloads.SaleCreatedEvent{
			SaleID:        sale.ID,
			UserID:        sale.UserID,
			Date:          sale.Date,
			PaymentMethod: sale.PaymentMethod.String(),
			TotalAmount:   sale.TotalAmount,
			Items:         lines,
		},
		Version: 1,
	})
	if err != nil {
		return err
	}

	threshold := s.cfg.LowStockThreshold
	if threshold < 0 {
		return nil
	}
	for _, level := range levels {
		if level.remaining > threshold {
			continue
		}
		err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductStockLow,
			AggregateType: enums.AggregateProduct,
			AggregateID:   level.product.ID,
			Actor:         actor,
			OccurredAt:    sale.Date,
			Data: payloads.ProductStockLowEvent{
				ProductID:      level.product.ID,
				ProductName:    level.product.Name,
				StockRemaining: level.remaining,
				Threshold:      threshold,
				SaleID:         sale.ID,
			},
			Version: 1,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) mapError(ctx context.Context, err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsSerializationFailure(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Sale conflicted with a concurrent update, please retry")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logg.Warn(s.logg.WithField(ctx, "timeout", s.cfg.TxTimeout.String()), "sale transaction timed out")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, storageFailureMessage)
	}
	s.logg.Error(ctx, "sale transaction failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, storageFailureMessage)
}

func (s *service) GetSale(ctx context.Context, viewer Viewer, saleID uuid.UUID) (*SaleResult, error) {
	sale, err := s.repo.FindSaleDetail(ctx, saleID, VisibilityFor(viewer, s.cfg.LegacyVisible))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Sale with ID %s not found", saleID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sale")
	}
	return NewSaleResult(sale, sale.Items), nil
}

func (s *service) ListSales(ctx context.Context, viewer Viewer, input ListSalesInput) (*SaleList, error) {
	rows, next, err := s.repo.ListSales(ctx, VisibilityFor(viewer, s.cfg.LegacyVisible), input.Pagination)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sales")
	}
	list := &SaleList{Sales: make([]SaleResult, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Sales = append(list.Sales, *NewSaleResult(&rows[i], rows[i].Items))
	}
	return list, nil
}

func (s *service) Summary(ctx context.Context, viewer Viewer, filters SummaryFilters) (*SalesSummary, error) {
	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	totals, err := s.repo.Summarize(ctx, VisibilityFor(viewer, s.cfg.LegacyVisible), filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: summarize sales")
	}
	return &SalesSummary{
		Count:       totals.Count,
		TotalAmount: totals.Total.StringFixed(2),
		From:        filters.From,
		To:          filters.To,
	}, nil
}
