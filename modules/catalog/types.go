package catalog

import (
	domain "github.com/example/eshop-backend/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductInput carries the writable fields of a product. On update an empty
// Image keeps the current one.
type ProductInput struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description" validate:"required"`
	RichDescription string          `json:"richDescription"`
	Image           string          `json:"image"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `json:"price"`
	CategoryID      string          `json:"category" validate:"required,uuid"`
	CountInStock    int             `json:"countInStock" validate:"gte=0"`
	Rating          float64         `json:"rating" validate:"gte=0"`
	NumReviews      int             `json:"numReviews" validate:"gte=0"`
	IsFeatured      bool            `json:"isFeatured"`
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name  string `json:"name" validate:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ListProductsRequest filters products by category. An empty set lists all.
type ListProductsRequest struct {
	Categories []string `json:"categories,omitempty" validate:"dive,uuid"`
}

// ProductsResponse represents a list of products.
type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// ProductIDRequest addresses one product.
type ProductIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Product domain.Product `json:"product"`
}

// CreateProductRequest represents a product creation request.
type CreateProductRequest struct {
	Product ProductInput `json:"product"`
}

// UpdateProductRequest represents a product update request.
type UpdateProductRequest struct {
	ID      string       `json:"id" validate:"required,uuid"`
	Product ProductInput `json:"product"`
}

// FeaturedProductsRequest limits the featured list. Zero or less means no limit.
type FeaturedProductsRequest struct {
	Count int `json:"count"`
}

// SetGalleryRequest replaces the gallery of a product.
type SetGalleryRequest struct {
	ID     string   `json:"id" validate:"required,uuid"`
	Images []string `json:"images" validate:"max=10"`
}

// CategoryIDRequest addresses one category.
type CategoryIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// CategoryResponse wraps a single category.
type CategoryResponse struct {
	Category domain.Category `json:"category"`
}

// CategoriesResponse represents a list of categories.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// CreateCategoryRequest represents a category creation request.
type CreateCategoryRequest struct {
	Category CategoryInput `json:"category"`
}

// UpdateCategoryRequest represents a category update request.
type UpdateCategoryRequest struct {
	ID       string        `json:"id" validate:"required,uuid"`
	Category CategoryInput `json:"category"`
}

// EmptyRequest is used by services that take no parameters.
type EmptyRequest struct{}

// CountResponse carries a row count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
