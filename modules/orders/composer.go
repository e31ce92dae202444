package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/domain/catalog"
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/example/eshop-backend/domain/user"
	"github.com/example/eshop-backend/modules/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Composer turns a submitted order into persisted OrderItems and an Order
// whose total is derived from current product prices. All writes happen in
// one transaction: a failure leaves neither the Order nor any of its items.
type Composer struct {
	db *gorm.DB
}

// NewComposer creates a new Composer.
func NewComposer(db *gorm.DB) *Composer {
	return &Composer{db: db}
}

// Compose validates req and persists the order. It returns the id of the
// new order.
func (c *Composer) Compose(ctx context.Context, req ComposeOrderRequest) (string, error) {
	if err := apperr.Validate(req); err != nil {
		return "", err
	}

	status := domain.StatusPending
	if req.Status != "" {
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
		}
		status = st
	}

	orderID := uuid.New().String()

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUser(tx, req.UserID); err != nil {
			return err
		}

		conn := &sharedTx{tx: tx}

		itemIDs, err := persistItems(ctx, conn, orderID, req.Items)
		if err != nil {
			return err
		}

		lineTotals, err := priceItems(ctx, conn, itemIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, lt := range lineTotals {
			total = total.Add(lt)
		}

		order := domain.Order{
			ID:               orderID,
			ShippingAddress1: req.ShippingAddress1,
			ShippingAddress2: req.ShippingAddress2,
			City:             req.City,
			Zip:              req.Zip,
			Country:          req.Country,
			Phone:            req.Phone,
			Status:           status,
			TotalPrice:       total,
			UserID:           req.UserID,
			DateOrdered:      time.Now(),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return store.Classify(err, "create order")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return orderID, nil
}

func checkUser(tx *gorm.DB, userID string) error {
	var count int64
	if err := tx.Model(&user.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return store.Classify(err, "check user %s", userID)
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s does not exist", apperr.ErrInvalidReference, userID)
	}
	return nil
}

// sharedTx serializes statements issued by concurrent goroutines onto the
// single connection that backs a transaction.
type sharedTx struct {
	mu sync.Mutex
	tx *gorm.DB
}

func (s *sharedTx) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.tx.WithContext(ctx))
}

// persistItems writes every item concurrently and returns their ids in
// submission order. The first failure cancels the rest.
func persistItems(ctx context.Context, conn *sharedTx, orderID string, inputs []ItemInput) ([]string, error) {
	ids := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		g.Go(func() error {
			item := domain.Item{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				Position:  i,
				Quantity:  in.Quantity,
				ProductID: in.ProductID,
			}
			err := conn.run(gctx, func(tx *gorm.DB) error {
				return tx.Omit(clause.Associations).Create(&item).Error
			})
			if err != nil {
				return store.Classify(err, "create order item %d", i)
			}
			ids[i] = item.ID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// priceItems re-reads every persisted item with its product and returns
// quantity * current price per item.
func priceItems(ctx context.Context, conn *sharedTx, itemIDs []string) ([]decimal.Decimal, error) {
	totals := make([]decimal.Decimal, len(itemIDs))
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range itemIDs {
		g.Go(func() error {
			var item domain.Item
			err := conn.run(gctx, func(tx *gorm.DB) error {
				return tx.Preload("Product").First(&item, "id = ?", id).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: order item %s vanished", apperr.ErrPersistence, id)
				}
				return store.Classify(err, "read order item %s", id)
			}
			if item.Product == nil {
				return fmt.Errorf("%w: product %s does not exist", apperr.ErrInvalidReference, item.ProductID)
			}
			totals[i] = lineTotal(item.Product, item.Quantity)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

func lineTotal(p *catalog.Product, quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
