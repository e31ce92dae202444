package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/shopspring/decimal"
)

// OrdersPort defines the order operations available to other modules.
type OrdersPort interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ComposeOrder(ctx context.Context, req ComposeOrderRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	CountOrders(ctx context.Context) (int64, error)
	UserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	Checkout(ctx context.Context, items []ItemInput) (string, error)
}

// OrdersAdapter implements OrdersPort over request-reply services.
type OrdersAdapter struct {
	container mono.ServiceContainer
}

var _ OrdersPort = (*OrdersAdapter)(nil)

// NewOrdersAdapter creates a new OrdersAdapter.
func NewOrdersAdapter(container mono.ServiceContainer) *OrdersAdapter {
	return &OrdersAdapter{container: container}
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

func (a *OrdersAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var resp OrdersResponse
	if err := call(ctx, a.container, "list-orders", &EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *OrdersAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var resp OrderResponse
	if err := call(ctx, a.container, "get-order", &OrderIDRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (a *OrdersAdapter) ComposeOrder(ctx context.Context, req ComposeOrderRequest) (*domain.Order, error) {
	var resp OrderResponse
	if err := call(ctx, a.container, "compose-order", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (a *OrdersAdapter) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	var resp OrderResponse
	if err := call(ctx, a.container, "update-order-status", &UpdateStatusRequest{ID: id, Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (a *OrdersAdapter) DeleteOrder(ctx context.Context, id string) error {
	var resp DeleteResponse
	return call(ctx, a.container, "delete-order", &OrderIDRequest{ID: id}, &resp)
}

func (a *OrdersAdapter) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var resp TotalSalesResponse
	if err := call(ctx, a.container, "total-sales", &EmptyRequest{}, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.TotalSales, nil
}

func (a *OrdersAdapter) CountOrders(ctx context.Context) (int64, error) {
	var resp CountResponse
	if err := call(ctx, a.container, "count-orders", &EmptyRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (a *OrdersAdapter) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var resp OrdersResponse
	if err := call(ctx, a.container, "user-orders", &UserOrdersRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *OrdersAdapter) Checkout(ctx context.Context, items []ItemInput) (string, error) {
	var resp CheckoutResponse
	if err := call(ctx, a.container, "checkout-session", &CheckoutRequest{Items: items}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
