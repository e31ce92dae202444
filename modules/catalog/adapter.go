package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/catalog"
	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/helper"
)

// CatalogPort defines the catalog operations available to other modules.
type CatalogPort interface {
	ListProducts(ctx context.Context, categoryIDs []string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
	FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error)
	SetGallery(ctx context.Context, id string, images []string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CatalogAdapter implements CatalogPort over request-reply services.
type CatalogAdapter struct {
	container mono.ServiceContainer
}

var _ CatalogPort = (*CatalogAdapter)(nil)

// NewCatalogAdapter creates a new CatalogAdapter.
func NewCatalogAdapter(container mono.ServiceContainer) *CatalogAdapter {
	return &CatalogAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	)
	if err == nil {
		return nil
	}
	var remote *monoerrors.RemoteError
	if errors.As(err, &remote) {
		return apperr.FromMessage(remote.Message)
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}

func (a *CatalogAdapter) ListProducts(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	var resp ProductsResponse
	if err := call(ctx, a.container, "list-products", &ListProductsRequest{Categories: categoryIDs}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *CatalogAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var resp ProductResponse
	if err := call(ctx, a.container, "get-product", &ProductIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (a *CatalogAdapter) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var resp ProductResponse
	if err := call(ctx, a.container, "create-product", &CreateProductRequest{Product: in}, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (a *CatalogAdapter) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	var resp ProductResponse
	if err := call(ctx, a.container, "update-product", &UpdateProductRequest{ID: id, Product: in}, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (a *CatalogAdapter) DeleteProduct(ctx context.Context, id string) error {
	var resp DeleteResponse
	return call(ctx, a.container, "delete-product", &ProductIDRequest{ID: id}, &resp)
}

func (a *CatalogAdapter) CountProducts(ctx context.Context) (int64, error) {
	var resp CountResponse
	if err := call(ctx, a.container, "count-products", &EmptyRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (a *CatalogAdapter) FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error) {
	var resp ProductsResponse
	if err := call(ctx, a.container, "featured-products", &FeaturedProductsRequest{Count: count}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *CatalogAdapter) SetGallery(ctx context.Context, id string, images []string) (*domain.Product, error) {
	var resp ProductResponse
	if err := call(ctx, a.container, "set-gallery", &SetGalleryRequest{ID: id, Images: images}, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (a *CatalogAdapter) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp CategoriesResponse
	if err := call(ctx, a.container, "list-categories", &EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (a *CatalogAdapter) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var resp CategoryResponse
	if err := call(ctx, a.container, "get-category", &CategoryIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

func (a *CatalogAdapter) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	var resp CategoryResponse
	if err := call(ctx, a.container, "create-category", &CreateCategoryRequest{Category: in}, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

func (a *CatalogAdapter) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	var resp CategoryResponse
	if err := call(ctx, a.container, "update-category", &UpdateCategoryRequest{ID: id, Category: in}, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

func (a *CatalogAdapter) DeleteCategory(ctx context.Context, id string) error {
	var resp DeleteResponse
	return call(ctx, a.container, "delete-category", &CategoryIDRequest{ID: id}, &resp)
}
