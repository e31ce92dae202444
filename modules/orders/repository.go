package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/example/eshop-backend/modules/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = fmt.Errorf("%w: the order cannot be found", apperr.ErrNotFound)

// Repository handles order persistence outside of composition.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "phone", "email")
}

func itemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// List returns every order, newest first, with the ordering user.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("User", withUserSummary).
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, store.Classify(err, "list orders")
	}
	return orders, nil
}

// FindByID returns one order with its items, their products and categories,
// and the ordering user.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("User", withUserSummary).
		Preload("Items", itemsInPosition).
		Preload("Items.Product.Category").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, store.Classify(err, "find order %s", id)
	}
	return &order, nil
}

// ListByUser returns the orders placed by one user, newest first, with
// their items and products.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInPosition).
		Preload("Items.Product.Category").
		Where("user_id = ?", userID).
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, store.Classify(err, "list orders of user %s", userID)
	}
	return orders, nil
}

// UpdateStatus sets the status of an order.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return store.Classify(result.Error, "update status of order %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete removes an order and all of its items in one transaction.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Order{}, "id = ?", id)
		if result.Error != nil {
			return store.Classify(result.Error, "delete order %s", id)
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.Item{}).Error; err != nil {
			return store.Classify(err, "delete items of order %s", id)
		}
		return nil
	})
}

// Totals returns the stored total of every order.
func (r *Repository) Totals(ctx context.Context) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Pluck("total_price", &totals).Error; err != nil {
		return nil, store.Classify(err, "sum order totals")
	}
	return totals, nil
}

// Count returns the number of orders.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&count).Error; err != nil {
		return 0, store.Classify(err, "count orders")
	}
	return count, nil
}
