package enums

import "strings"

// ProductCategory groups products on the register screen.
type ProductCategory string

const (
	ProductCategoryDrinks    ProductCategory = "Drinks"
	ProductCategorySnacks    ProductCategory = "Snacks"
	ProductCategoryCandy     ProductCategory = "Candy"
	ProductCategoryFood      ProductCategory = "Food"
	ProductCategoryHousehold ProductCategory = "Household"
	ProductCategoryOther     ProductCategory = "Other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryDrinks,
	ProductCategorySnacks,
	ProductCategoryCandy,
	ProductCategoryFood,
	ProductCategoryHousehold,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known category.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// NormalizeProductCategory matches known categories case-insensitively and keeps
// any other label verbatim. Blank input becomes Other.
func NormalizeProductCategory(value string) ProductCategory {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ProductCategoryOther
	}
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate
		}
	}
	return ProductCategory(trimmed)
}
