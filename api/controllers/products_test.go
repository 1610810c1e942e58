package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

type stubProductService struct {
	createInput productsvc.CreateProductInput
	updateInput productsvc.UpdateProductInput
	listInput   productsvc.ListProductsInput
	deleted     uuid.UUID
	err         error
}

func (s *stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.createInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name, Price: input.Price.StringFixed(2)}, nil
}

func (s *stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	s.updateInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	s.deleted = productID
	return s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) (*productsvc.ProductListResult, error) {
	s.listInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.ProductListResult{Products: []productsvc.ProductDTO{}}, nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("string price", func(t *testing.T) {
		svc := &stubProductService{}
		body := `{"name":"Cola","price":"1.50","stock_quantity":10,"category":"drinks"}`
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.createInput.Price.StringFixed(2) != "1.50" || svc.createInput.StockQuantity != 10 {
			t.Fatalf("unexpected input %+v", svc.createInput)
		}
	})

	t.Run("numeric price", func(t *testing.T) {
		svc := &stubProductService{}
		body := `{"name":"Chips","price":2.25,"stock_quantity":0}`
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.createInput.Price.StringFixed(2) != "2.25" {
			t.Fatalf("unexpected price %s", svc.createInput.Price)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		svc := &stubProductService{}
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(`{"name":"Gum","stock_quantity":1}`)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("negative stock", func(t *testing.T) {
		svc := &stubProductService{}
		rec := httptest.NewRecorder()
		CreateProduct(svc, logg).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(`{"name":"Gum","price":"1","stock_quantity":-1}`)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestUpdateProductPartial(t *testing.T) {
	svc := &stubProductService{}
	productID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String(), bytes.NewBufferString(`{"stock_quantity":4}`))
	req = withURLParam(req, "productId", productID.String())
	rec := httptest.NewRecorder()
	UpdateProduct(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updateInput.StockQuantity == nil || *svc.updateInput.StockQuantity != 4 {
		t.Fatalf("expected stock update, got %+v", svc.updateInput)
	}
	if svc.updateInput.Name != nil || svc.updateInput.Price != nil {
		t.Fatalf("expected untouched fields to stay nil")
	}
}

func TestDeleteProduct(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/nope", nil), "productId", "not-a-uuid")
		rec := httptest.NewRecorder()
		DeleteProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := &stubProductService{}
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil), "productId", productID.String())
		rec := httptest.NewRecorder()
		DeleteProduct(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 got %d", rec.Code)
		}
		if svc.deleted != productID {
			t.Fatalf("expected DeleteProduct to be invoked")
		}
	})

	t.Run("sold product", func(t *testing.T) {
		svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeConflict, "product has recorded sales and cannot be deleted")}
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil), "productId", productID.String())
		rec := httptest.NewRecorder()
		DeleteProduct(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", rec.Code)
		}
	})
}

func TestListProductsFilters(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=SNACKS&q=%20chip%20&limit=5&in_stock=true", nil)
	rec := httptest.NewRecorder()
	ListProducts(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	filters := svc.listInput.Filters
	if filters.Category == nil || *filters.Category != enums.ProductCategorySnacks {
		t.Fatalf("expected normalized category, got %v", filters.Category)
	}
	if filters.Query != "chip" || !filters.InStockOnly {
		t.Fatalf("unexpected filters %+v", filters)
	}
	if svc.listInput.Pagination.Limit != 5 {
		t.Fatalf("unexpected limit %d", svc.listInput.Pagination.Limit)
	}

	rec = httptest.NewRecorder()
	ListProducts(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=1000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit, got %d", rec.Code)
	}
}
