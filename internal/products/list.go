package product

import (
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the catalog endpoint.
type ProductListFilters struct {
	Category    *enums.ProductCategory `json:"category,omitempty"`
	Query       string                 `json:"q,omitempty"`
	InStockOnly bool                   `json:"in_stock,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter products.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

// ProductListResult is one page of the catalog.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
