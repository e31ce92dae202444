package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "github.com/example/eshop-backend/domain/catalog"
	"github.com/example/eshop-backend/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CacheConfig configures the optional Redis read cache.
type CacheConfig struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// CatalogModule provides product and category services.
type CatalogModule struct {
	db       *gorm.DB
	cacheCfg CacheConfig
	cache    *RedisCache
	service  *Service
}

// Compile-time interface checks.
var _ mono.Module = (*CatalogModule)(nil)
var _ mono.ServiceProviderModule = (*CatalogModule)(nil)
var _ mono.HealthCheckableModule = (*CatalogModule)(nil)

// NewModule creates a new CatalogModule. An empty Redis address disables
// the read cache.
func NewModule(db *gorm.DB, cacheCfg CacheConfig) *CatalogModule {
	return &CatalogModule{
		db:       db,
		cacheCfg: cacheCfg,
	}
}

// Name returns the module name.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// Start initializes the repository, the cache and the service.
func (m *CatalogModule) Start(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	var cache ReadCache
	if m.cacheCfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: m.cacheCfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", m.cacheCfg.RedisAddr, err)
		}
		m.cache = NewRedisCache(client, m.cacheCfg.Prefix+"catalog:", m.cacheCfg.TTL)
		cache = m.cache
	}

	m.service = NewService(NewRepository(m.db), cache)

	log.Printf("[catalog] Module started (cache: %t)", m.cache != nil)
	return nil
}

// Stop closes the cache connection.
func (m *CatalogModule) Stop(_ context.Context) error {
	if m.cache != nil {
		m.cache.Close()
	}
	log.Println("[catalog] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *CatalogModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	if err := store.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}

	details := map[string]any{"cache": m.cache != nil}
	if m.cache != nil {
		if err := m.cache.Ping(ctx); err != nil {
			return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
		}
		stats := m.cache.Snapshot()
		details["cache_hits"] = stats.Hits
		details["cache_misses"] = stats.Misses
	}

	return mono.HealthStatus{Healthy: true, Message: "operational", Details: details}
}

// RegisterServices registers request-reply services in the service container.
func (m *CatalogModule) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"list-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-products", json.Unmarshal, json.Marshal, m.handleListProducts)
		}},
		{"get-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-product", json.Unmarshal, json.Marshal, m.handleGetProduct)
		}},
		{"create-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-product", json.Unmarshal, json.Marshal, m.handleCreateProduct)
		}},
		{"update-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-product", json.Unmarshal, json.Marshal, m.handleUpdateProduct)
		}},
		{"delete-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-product", json.Unmarshal, json.Marshal, m.handleDeleteProduct)
		}},
		{"count-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "count-products", json.Unmarshal, json.Marshal, m.handleCountProducts)
		}},
		{"featured-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "featured-products", json.Unmarshal, json.Marshal, m.handleFeaturedProducts)
		}},
		{"set-gallery", func() error {
			return helper.RegisterTypedRequestReplyService(container, "set-gallery", json.Unmarshal, json.Marshal, m.handleSetGallery)
		}},
		{"list-categories", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-categories", json.Unmarshal, json.Marshal, m.handleListCategories)
		}},
		{"get-category", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-category", json.Unmarshal, json.Marshal, m.handleGetCategory)
		}},
		{"create-category", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-category", json.Unmarshal, json.Marshal, m.handleCreateCategory)
		}},
		{"update-category", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-category", json.Unmarshal, json.Marshal, m.handleUpdateCategory)
		}},
		{"delete-category", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-category", json.Unmarshal, json.Marshal, m.handleDeleteCategory)
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
	}

	log.Printf("[catalog] Registered %d services", len(registrations))
	return nil
}

func (m *CatalogModule) handleListProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ProductsResponse, error) {
	products, err := m.service.ListProducts(ctx, req.Categories)
	if err != nil {
		return ProductsResponse{}, err
	}
	return ProductsResponse{Products: products}, nil
}

func (m *CatalogModule) handleGetProduct(ctx context.Context, req ProductIDRequest, _ *mono.Msg) (ProductResponse, error) {
	return productResponse(m.service.GetProduct(ctx, req.ID))
}

func (m *CatalogModule) handleCreateProduct(ctx context.Context, req CreateProductRequest, _ *mono.Msg) (ProductResponse, error) {
	return productResponse(m.service.CreateProduct(ctx, req.Product))
}

func (m *CatalogModule) handleUpdateProduct(ctx context.Context, req UpdateProductRequest, _ *mono.Msg) (ProductResponse, error) {
	return productResponse(m.service.UpdateProduct(ctx, req.ID, req.Product))
}

func (m *CatalogModule) handleDeleteProduct(ctx context.Context, req ProductIDRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteProduct(ctx, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *CatalogModule) handleCountProducts(ctx context.Context, _ EmptyRequest, _ *mono.Msg) (CountResponse, error) {
	count, err := m.service.CountProducts(ctx)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: count}, nil
}

func (m *CatalogModule) handleFeaturedProducts(ctx context.Context, req FeaturedProductsRequest, _ *mono.Msg) (ProductsResponse, error) {
	products, err := m.service.FeaturedProducts(ctx, req.Count)
	if err != nil {
		return ProductsResponse{}, err
	}
	return ProductsResponse{Products: products}, nil
}

func (m *CatalogModule) handleSetGallery(ctx context.Context, req SetGalleryRequest, _ *mono.Msg) (ProductResponse, error) {
	return productResponse(m.service.SetGallery(ctx, req.ID, req.Images))
}

func (m *CatalogModule) handleListCategories(ctx context.Context, _ EmptyRequest, _ *mono.Msg) (CategoriesResponse, error) {
	categories, err := m.service.ListCategories(ctx)
	if err != nil {
		return CategoriesResponse{}, err
	}
	return CategoriesResponse{Categories: categories}, nil
}

func (m *CatalogModule) handleGetCategory(ctx context.Context, req CategoryIDRequest, _ *mono.Msg) (CategoryResponse, error) {
	return categoryResponse(m.service.GetCategory(ctx, req.ID))
}

func (m *CatalogModule) handleCreateCategory(ctx context.Context, req CreateCategoryRequest, _ *mono.Msg) (CategoryResponse, error) {
	return categoryResponse(m.service.CreateCategory(ctx, req.Category))
}

func (m *CatalogModule) handleUpdateCategory(ctx context.Context, req UpdateCategoryRequest, _ *mono.Msg) (CategoryResponse, error) {
	return categoryResponse(m.service.UpdateCategory(ctx, req.ID, req.Category))
}

func (m *CatalogModule) handleDeleteCategory(ctx context.Context, req CategoryIDRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteCategory(ctx, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func productResponse(p *domain.Product, err error) (ProductResponse, error) {
	if err != nil {
		return ProductResponse{}, err
	}
	return ProductResponse{Product: *p}, nil
}

func categoryResponse(c *domain.Category, err error) (CategoryResponse, error) {
	if err != nil {
		return CategoryResponse{}, err
	}
	return CategoryResponse{Category: *c}, nil
}
