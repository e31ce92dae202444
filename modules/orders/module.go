package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/eshop-backend/domain/order"
	"github.com/example/eshop-backend/modules/payment"
	"github.com/example/eshop-backend/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// OrdersModule provides order composition, queries and checkout.
type OrdersModule struct {
	db      *gorm.DB
	gateway payment.Gateway
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*OrdersModule)(nil)
var _ mono.ServiceProviderModule = (*OrdersModule)(nil)
var _ mono.HealthCheckableModule = (*OrdersModule)(nil)

// NewModule creates a new OrdersModule.
func NewModule(db *gorm.DB, gateway payment.Gateway) *OrdersModule {
	return &OrdersModule{db: db, gateway: gateway}
}

// Name returns the module name.
func (m *OrdersModule) Name() string {
	return "orders"
}

// Start initializes the service.
func (m *OrdersModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if m.gateway == nil {
		m.gateway = payment.New(payment.Config{})
	}
	m.service = NewService(m.db, m.gateway)
	log.Println("[orders] Module started")
	return nil
}

// Stop stops the module.
func (m *OrdersModule) Stop(_ context.Context) error {
	log.Println("[orders] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *OrdersModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	if err := store.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// RegisterServices registers request-reply services in the service container.
func (m *OrdersModule) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"list-orders", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-orders", json.Unmarshal, json.Marshal, m.handleListOrders)
		}},
		{"get-order", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-order", json.Unmarshal, json.Marshal, m.handleGetOrder)
		}},
		{"compose-order", func() error {
			return helper.RegisterTypedRequestReplyService(container, "compose-order", json.Unmarshal, json.Marshal, m.handleComposeOrder)
		}},
		{"update-order-status", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-order-status", json.Unmarshal, json.Marshal, m.handleUpdateStatus)
		}},
		{"delete-order", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-order", json.Unmarshal, json.Marshal, m.handleDeleteOrder)
		}},
		{"total-sales", func() error {
			return helper.RegisterTypedRequestReplyService(container, "total-sales", json.Unmarshal, json.Marshal, m.handleTotalSales)
		}},
		{"count-orders", func() error {
			return helper.RegisterTypedRequestReplyService(container, "count-orders", json.Unmarshal, json.Marshal, m.handleCountOrders)
		}},
		{"user-orders", func() error {
			return helper.RegisterTypedRequestReplyService(container, "user-orders", json.Unmarshal, json.Marshal, m.handleUserOrders)
		}},
		{"checkout-session", func() error {
			return helper.RegisterTypedRequestReplyService(container, "checkout-session", json.Unmarshal, json.Marshal, m.handleCheckout)
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
	}

	log.Printf("[orders] Registered %d services", len(registrations))
	return nil
}

func (m *OrdersModule) handleListOrders(ctx context.Context, _ EmptyRequest, _ *mono.Msg) (OrdersResponse, error) {
	orders, err := m.service.ListOrders(ctx)
	if err != nil {
		return OrdersResponse{}, err
	}
	return OrdersResponse{Orders: orders}, nil
}

func (m *OrdersModule) handleGetOrder(ctx context.Context, req OrderIDRequest, _ *mono.Msg) (OrderResponse, error) {
	return orderResponse(m.service.GetOrder(ctx, req.ID))
}

func (m *OrdersModule) handleComposeOrder(ctx context.Context, req ComposeOrderRequest, _ *mono.Msg) (OrderResponse, error) {
	resp, err := orderResponse(m.service.ComposeOrder(ctx, req))
	if err == nil {
		log.Printf("[orders] Order %s composed for user %s (total %s)", resp.Order.ID, resp.Order.UserID, resp.Order.TotalPrice)
	}
	return resp, err
}

func (m *OrdersModule) handleUpdateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (OrderResponse, error) {
	return orderResponse(m.service.UpdateStatus(ctx, req.ID, req.Status))
}

func (m *OrdersModule) handleDeleteOrder(ctx context.Context, req OrderIDRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteOrder(ctx, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *OrdersModule) handleTotalSales(ctx context.Context, _ EmptyRequest, _ *mono.Msg) (TotalSalesResponse, error) {
	total, err := m.service.TotalSales(ctx)
	if err != nil {
		return TotalSalesResponse{}, err
	}
	return TotalSalesResponse{TotalSales: total}, nil
}

func (m *OrdersModule) handleCountOrders(ctx context.Context, _ EmptyRequest, _ *mono.Msg) (CountResponse, error) {
	count, err := m.service.CountOrders(ctx)
	if err != nil {
		return CountResponse{}, err
	}
	return CountResponse{Count: count}, nil
}

func (m *OrdersModule) handleUserOrders(ctx context.Context, req UserOrdersRequest, _ *mono.Msg) (OrdersResponse, error) {
	orders, err := m.service.UserOrders(ctx, req.UserID)
	if err != nil {
		return OrdersResponse{}, err
	}
	return OrdersResponse{Orders: orders}, nil
}

func (m *OrdersModule) handleCheckout(ctx context.Context, req CheckoutRequest, _ *mono.Msg) (CheckoutResponse, error) {
	id, err := m.service.Checkout(ctx, req.Items)
	if err != nil {
		return CheckoutResponse{}, err
	}
	return CheckoutResponse{ID: id}, nil
}

func orderResponse(o *domain.Order, err error) (OrderResponse, error) {
	if err != nil {
		return OrderResponse{}, err
	}
	return OrderResponse{Order: *o}, nil
}
