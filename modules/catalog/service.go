package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/catalog"
	"github.com/google/uuid"
)

// ErrGalleryTooLarge is returned when more than MaxGalleryImages are given.
var ErrGalleryTooLarge = fmt.Errorf("%w: at most %d gallery images", apperr.ErrInvalidAsset, domain.MaxGalleryImages)

// Service implements catalog business logic with a cache-aside read path.
// Every write invalidates the whole catalog keyspace.
type Service struct {
	repo  *Repository
	cache ReadCache
}

// NewService creates a new Service. A nil cache disables caching.
func NewService(repo *Repository, cache ReadCache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache}
}

// ListProducts returns products, filtered by category when ids are given.
func (s *Service) ListProducts(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	if err := apperr.Validate(ListProductsRequest{Categories: categoryIDs}); err != nil {
		return nil, err
	}

	ids := append([]string(nil), categoryIDs...)
	sort.Strings(ids)
	key := "products:" + strings.Join(ids, ",")

	var products []domain.Product
	if s.cachedGet(ctx, key, &products) {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, key, products)
	return products, nil
}

// GetProduct returns one product with its category.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}

	key := "product:" + id
	var product domain.Product
	if s.cachedGet(ctx, key, &product) {
		return &product, nil
	}

	found, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, key, found)
	return found, nil
}

// CreateProduct creates a product. The category must exist and an image
// URL must already be attached.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, fmt.Errorf("%w: no image in the request", apperr.ErrMissingAsset)
	}

	product := &domain.Product{
		ID:          uuid.New().String(),
		Images:      []string{},
		DateCreated: time.Now(),
	}
	applyInput(product, in)

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.FindProduct(ctx, product.ID)
}

// UpdateProduct replaces the writable fields of a product. Without a new
// image URL the current image is kept.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}

	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	image := product.Image
	applyInput(product, in)
	if in.Image == "" {
		product.Image = image
	}
	product.Category = nil

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.FindProduct(ctx, id)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := apperr.ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CountProducts returns the number of products. Zero is a valid count.
func (s *Service) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if s.cachedGet(ctx, "products-count", &count) {
		return count, nil
	}
	count, err := s.repo.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	s.cachedSet(ctx, "products-count", count)
	return count, nil
}

// FeaturedProducts returns up to count featured products; count <= 0 returns all.
func (s *Service) FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error) {
	if count < 0 {
		count = 0
	}
	key := "featured:" + strconv.Itoa(count)

	var products []domain.Product
	if s.cachedGet(ctx, key, &products) {
		return products, nil
	}

	products, err := s.repo.FeaturedProducts(ctx, count)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, key, products)
	return products, nil
}

// SetGallery replaces the product's gallery wholesale.
func (s *Service) SetGallery(ctx context.Context, id string, images []string) (*domain.Product, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}
	if len(images) > domain.MaxGalleryImages {
		return nil, ErrGalleryTooLarge
	}
	if images == nil {
		images = []string{}
	}

	if err := s.repo.UpdateImages(ctx, id, images); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.FindProduct(ctx, id)
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if s.cachedGet(ctx, "categories", &categories) {
		return categories, nil
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, "categories", categories)
	return categories, nil
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}
	return s.repo.FindCategory(ctx, id)
}

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	category := &domain.Category{
		ID:    uuid.New().String(),
		Name:  in.Name,
		Icon:  in.Icon,
		Color: in.Color,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// UpdateCategory replaces the fields of a category.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = in.Name
	category.Icon = in.Icon
	category.Color = in.Color

	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := apperr.ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) checkInput(ctx context.Context, in ProductInput) error {
	if err := apperr.Validate(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", apperr.ErrInvalidArgument)
	}
	exists, err := s.repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvalidCategory
	}
	return nil
}

func applyInput(p *domain.Product, in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.RichDescription = in.RichDescription
	p.Image = in.Image
	p.Brand = in.Brand
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.CountInStock = in.CountInStock
	p.Rating = in.Rating
	p.NumReviews = in.NumReviews
	p.IsFeatured = in.IsFeatured
}

// Cache failures degrade to a database read; they never fail the request.

func (s *Service) cachedGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("[catalog] Cache read failed for %s: %v", key, err)
		return false
	}
	return hit
}

func (s *Service) cachedSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Printf("[catalog] Cache write failed for %s: %v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "*"); err != nil {
		log.Printf("[catalog] Cache invalidation failed: %v", err)
	}
}
