package orders

import (
	"context"
	"testing"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/domain/catalog"
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/example/eshop-backend/domain/user"
	"github.com/example/eshop-backend/modules/payment"
	"github.com/example/eshop-backend/modules/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	lines []payment.LineItem
	err   error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, lines []payment.LineItem) (string, error) {
	f.lines = lines
	if f.err != nil {
		return "", f.err
	}
	return "cs_test_42", nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	gateway *fakeGateway
	userID  string
	phone   catalog.Product
	cover   catalog.Product
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := store.Open(store.Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	u := user.User{ID: uuid.NewString(), Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Phone: "555-0100"}
	require.NoError(t, db.Create(&u).Error)

	category := catalog.Category{ID: uuid.NewString(), Name: "Phones"}
	require.NoError(t, db.Create(&category).Error)

	phone := catalog.Product{
		ID: uuid.NewString(), Name: "Phone", Image: "phone.png",
		Price: decimal.RequireFromString("199.99"), CategoryID: category.ID, CountInStock: 5,
	}
	cover := catalog.Product{
		ID: uuid.NewString(), Name: "Cover", Image: "cover.png",
		Price: decimal.RequireFromString("5.50"), CategoryID: category.ID, CountInStock: 50,
	}
	require.NoError(t, db.Create(&phone).Error)
	require.NoError(t, db.Create(&cover).Error)

	gw := &fakeGateway{}
	return &fixture{
		db:      db,
		svc:     NewService(db, gw),
		gateway: gw,
		userID:  u.ID,
		phone:   phone,
		cover:   cover,
	}
}

func (f *fixture) request(items ...ItemInput) ComposeOrderRequest {
	return ComposeOrderRequest{
		Items:            items,
		ShippingAddress1: "1 Main St",
		City:             "Pune",
		Zip:              "411001",
		Country:          "IN",
		Phone:            "555-0100",
		UserID:           f.userID,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestService_ComposeOrder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	order, err := f.svc.ComposeOrder(ctx, f.request(
		ItemInput{ProductID: f.phone.ID, Quantity: 2},
		ItemInput{ProductID: f.cover.ID, Quantity: 1},
	))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("405.48").Equal(order.TotalPrice), "got %s", order.TotalPrice)
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, f.phone.ID, order.Items[0].ProductID, "items keep submission order")
	assert.Equal(t, f.cover.ID, order.Items[1].ProductID)
	require.NotNil(t, order.Items[0].Product)
	require.NotNil(t, order.Items[0].Product.Category)
	assert.Equal(t, "Phones", order.Items[0].Product.Category.Name)
	require.NotNil(t, order.User)
	assert.Equal(t, "Asha", order.User.Name)

	var stock catalog.Product
	require.NoError(t, f.db.First(&stock, "id = ?", f.phone.ID).Error)
	assert.Equal(t, 5, stock.CountInStock, "composition does not touch stock")
}

func TestService_ComposeOrderUsesCurrentPrice(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&catalog.Product{}).
		Where("id = ?", f.phone.ID).
		Update("price", decimal.RequireFromString("150")).Error)

	order, err := f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.phone.ID, Quantity: 3}))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(order.TotalPrice), "got %s", order.TotalPrice)
}

func TestService_ComposeOrderFailureLeavesNothing(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*ComposeOrderRequest)
		wantErr error
	}{
		{
			name: "unknown product",
			mutate: func(r *ComposeOrderRequest) {
				r.Items = append(r.Items, ItemInput{ProductID: uuid.NewString(), Quantity: 1})
			},
			wantErr: apperr.ErrInvalidReference,
		},
		{
			name:    "unknown user",
			mutate:  func(r *ComposeOrderRequest) { r.UserID = uuid.NewString() },
			wantErr: apperr.ErrInvalidReference,
		},
		{
			name:    "malformed product id",
			mutate:  func(r *ComposeOrderRequest) { r.Items[0].ProductID = "abc" },
			wantErr: apperr.ErrInvalidIdentifier,
		},
		{
			name:    "malformed user id",
			mutate:  func(r *ComposeOrderRequest) { r.UserID = "abc" },
			wantErr: apperr.ErrInvalidIdentifier,
		},
		{
			name:    "no items",
			mutate:  func(r *ComposeOrderRequest) { r.Items = nil },
			wantErr: apperr.ErrInvalidArgument,
		},
		{
			name:    "zero quantity",
			mutate:  func(r *ComposeOrderRequest) { r.Items[0].Quantity = 0 },
			wantErr: apperr.ErrInvalidArgument,
		},
		{
			name:    "missing city",
			mutate:  func(r *ComposeOrderRequest) { r.City = "" },
			wantErr: apperr.ErrInvalidArgument,
		},
		{
			name:    "unknown status",
			mutate:  func(r *ComposeOrderRequest) { r.Status = "lost" },
			wantErr: apperr.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(
				ItemInput{ProductID: f.phone.ID, Quantity: 1},
				ItemInput{ProductID: f.cover.ID, Quantity: 2},
			)
			tt.mutate(&req)

			_, err := f.svc.ComposeOrder(ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, countRows(t, f.db, &domain.Order{}), "no order persisted")
			assert.Zero(t, countRows(t, f.db, &domain.Item{}), "no order items persisted")
		})
	}
}

func TestService_ComposeOrderExplicitStatus(t *testing.T) {
	f := setupFixture(t)

	req := f.request(ItemInput{ProductID: f.cover.ID, Quantity: 1})
	req.Status = "shipped"
	order, err := f.svc.ComposeOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, order.Status)
}

func TestService_UpdateStatus(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	order, err := f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.phone.ID, Quantity: 1}))
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	assert.True(t, order.TotalPrice.Equal(updated.TotalPrice), "total is never recomputed")

	_, err = f.svc.UpdateStatus(ctx, order.ID, "teleported")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = f.svc.UpdateStatus(ctx, uuid.NewString(), "Shipped")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, "abc", "Shipped")
	assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
}

func TestService_DeleteOrder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	keep, err := f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.cover.ID, Quantity: 1}))
	require.NoError(t, err)
	gone, err := f.svc.ComposeOrder(ctx, f.request(
		ItemInput{ProductID: f.phone.ID, Quantity: 1},
		ItemInput{ProductID: f.cover.ID, Quantity: 4},
	))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOrder(ctx, gone.ID))

	_, err = f.svc.GetOrder(ctx, gone.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 1, countRows(t, f.db, &domain.Item{}), "only the kept order's item remains")

	_, err = f.svc.GetOrder(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, gone.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, "abc"), apperr.ErrInvalidIdentifier)
}

func TestService_TotalsAndCounts(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	total, err := f.svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "no orders is a total of zero")

	count, err := f.svc.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.phone.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.cover.ID, Quantity: 2}))
	require.NoError(t, err)

	total, err = f.svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("210.99").Equal(total), "got %s", total)

	count, err = f.svc.CountOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestService_ListAndUserOrders(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	other := user.User{ID: uuid.NewString(), Name: "Ravi", Email: "ravi@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&other).Error)

	_, err := f.svc.ComposeOrder(ctx, f.request(ItemInput{ProductID: f.phone.ID, Quantity: 1}))
	require.NoError(t, err)
	req := f.request(ItemInput{ProductID: f.cover.ID, Quantity: 1})
	req.UserID = other.ID
	_, err = f.svc.ComposeOrder(ctx, req)
	require.NoError(t, err)

	all, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, o := range all {
		require.NotNil(t, o.User)
		assert.NotEmpty(t, o.User.Name)
		assert.Empty(t, o.User.PasswordHash)
	}

	mine, err := f.svc.UserOrders(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	require.NotNil(t, mine[0].Items[0].Product)
	assert.Equal(t, "Phone", mine[0].Items[0].Product.Name)

	none, err := f.svc.UserOrders(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.UserOrders(ctx, "abc")
	assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
}

func TestService_Checkout(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	id, err := f.svc.Checkout(ctx, []ItemInput{
		{ProductID: f.phone.ID, Quantity: 2},
		{ProductID: f.cover.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_42", id)

	assert.Equal(t, []payment.LineItem{
		{Name: "Phone", UnitAmount: 19999, Quantity: 2},
		{Name: "Cover", UnitAmount: 550, Quantity: 1},
	}, f.gateway.lines)

	_, err = f.svc.Checkout(ctx, []ItemInput{{ProductID: uuid.NewString(), Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	_, err = f.svc.Checkout(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	f.gateway.err = payment.ErrDisabled
	_, err = f.svc.Checkout(ctx, []ItemInput{{ProductID: f.cover.ID, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}
