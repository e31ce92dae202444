package orders

import (
	domain "github.com/example/eshop-backend/domain/order"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID string `json:"product" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// ComposeOrderRequest carries everything needed to place an order. The
// total price is never taken from the client.
type ComposeOrderRequest struct {
	Items            []ItemInput `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string      `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string      `json:"shippingAddress2"`
	City             string      `json:"city" validate:"required"`
	Zip              string      `json:"zip" validate:"required"`
	Country          string      `json:"country" validate:"required"`
	Phone            string      `json:"phone" validate:"required"`
	Status           string      `json:"status"`
	UserID           string      `json:"user" validate:"required,uuid"`
}

// OrderIDRequest addresses one order.
type OrderIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Order domain.Order `json:"order"`
}

// OrdersResponse represents a list of orders.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// UpdateStatusRequest changes the status of an order.
type UpdateStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required"`
}

// UserOrdersRequest lists the orders of one user.
type UserOrdersRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// CheckoutRequest is a cart to be paid.
type CheckoutRequest struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// CheckoutResponse carries the payment session id.
type CheckoutResponse struct {
	ID string `json:"id"`
}

// EmptyRequest is used by services that take no parameters.
type EmptyRequest struct{}

// TotalSalesResponse carries the sum of all order totals.
type TotalSalesResponse struct {
	TotalSales decimal.Decimal `json:"totalsales"`
}

// CountResponse carries a row count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
