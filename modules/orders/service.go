package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/domain/catalog"
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/example/eshop-backend/modules/payment"
	"github.com/example/eshop-backend/modules/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Service implements order business logic.
type Service struct {
	db       *gorm.DB
	repo     *Repository
	composer *Composer
	gateway  payment.Gateway
}

// NewService creates a new Service.
func NewService(db *gorm.DB, gateway payment.Gateway) *Service {
	return &Service{
		db:       db,
		repo:     NewRepository(db),
		composer: NewComposer(db),
		gateway:  gateway,
	}
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// GetOrder returns one fully populated order.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if err := apperr.ValidateID(id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ComposeOrder places an order and returns it populated.
func (s *Service) ComposeOrder(ctx context.Context, req ComposeOrderRequest) (*domain.Order, error) {
	id, err := s.composer.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus moves an order to another status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if err := apperr.Validate(UpdateStatusRequest{ID: id, Status: status}); err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// DeleteOrder removes an order together with its items.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := apperr.ValidateID(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// TotalSales sums the totals of all orders. No orders is a total of zero.
func (s *Service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}

// CountOrders returns the number of orders.
func (s *Service) CountOrders(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// UserOrders returns the orders of one user, newest first.
func (s *Service) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if err := apperr.ValidateID(userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// Checkout prices the cart from current product prices and opens a payment
// session for it.
func (s *Service) Checkout(ctx context.Context, items []ItemInput) (string, error) {
	if err := apperr.Validate(CheckoutRequest{Items: items}); err != nil {
		return "", err
	}

	lines := make([]payment.LineItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range items {
		g.Go(func() error {
			var product catalog.Product
			err := s.db.WithContext(gctx).First(&product, "id = ?", in.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %s does not exist", apperr.ErrInvalidReference, in.ProductID)
				}
				return store.Classify(err, "resolve product %s", in.ProductID)
			}
			lines[i] = payment.LineItem{
				Name:       product.Name,
				UnitAmount: product.Price.Mul(hundred).Round(0).IntPart(),
				Quantity:   int64(in.Quantity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return s.gateway.CreateCheckoutSession(ctx, lines)
}
