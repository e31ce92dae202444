package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/catalog"
	"github.com/example/eshop-backend/modules/store"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when a product does not exist.
	ErrProductNotFound = fmt.Errorf("%w: the product cannot be found", apperr.ErrNotFound)
	// ErrCategoryNotFound is returned when a category does not exist.
	ErrCategoryNotFound = fmt.Errorf("%w: the category cannot be found", apperr.ErrNotFound)
	// ErrInvalidCategory is returned when a product references a missing category.
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", apperr.ErrInvalidReference)
)

// Repository handles product and category persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListProducts returns products with their category, optionally restricted
// to a set of category ids.
func (r *Repository) ListProducts(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	var products []domain.Product
	query := r.db.WithContext(ctx).Preload("Category").Order("date_created DESC")
	if len(categoryIDs) > 0 {
		query = query.Where("category_id IN ?", categoryIDs)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, store.Classify(err, "list products")
	}
	return products, nil
}

// FindProduct finds a product by ID with its category.
func (r *Repository) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, store.Classify(err, "find product %s", id)
	}
	return &product, nil
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return store.Classify(err, "create product")
	}
	return nil
}

// SaveProduct persists every column of an existing product.
func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Save(product).Error; err != nil {
		return store.Classify(err, "update product %s", product.ID)
	}
	return nil
}

// UpdateImages replaces the gallery of a product.
func (r *Repository) UpdateImages(ctx context.Context, id string, images []string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{ID: id}).
		Select("images").
		Updates(&domain.Product{Images: images})
	if result.Error != nil {
		return store.Classify(result.Error, "update gallery of %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if result.Error != nil {
		return store.Classify(result.Error, "delete product %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// CountProducts returns the number of products.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, store.Classify(err, "count products")
	}
	return count, nil
}

// FeaturedProducts returns featured products, at most limit when limit > 0.
func (r *Repository) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	query := r.db.WithContext(ctx).Preload("Category").Where("is_featured = ?", true).Order("date_created DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, store.Classify(err, "list featured products")
	}
	return products, nil
}

// CategoryExists reports whether a category with the given id exists.
func (r *Repository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, store.Classify(err, "check category %s", id)
	}
	return count > 0, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, store.Classify(err, "list categories")
	}
	return categories, nil
}

// FindCategory finds a category by ID.
func (r *Repository) FindCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, store.Classify(err, "find category %s", id)
	}
	return &category, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return store.Classify(err, "create category")
	}
	return nil
}

// SaveCategory persists an existing category.
func (r *Repository) SaveCategory(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return store.Classify(err, "update category %s", category.ID)
	}
	return nil
}

// DeleteCategory removes a category.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Category{}, "id = ?", id)
	if result.Error != nil {
		return store.Classify(result.Error, "delete category %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
