// Package order holds the order aggregate.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/eshop-backend/domain/catalog"
	"github.com/example/eshop-backend/domain/user"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus returns the canonical status for s, ignoring case.
func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Item is one line of an order. Position keeps the order in which the items
// were submitted.
type Item struct {
	ID        string           `gorm:"primaryKey;type:text" json:"id"`
	OrderID   string           `gorm:"index;not null;type:text" json:"-"`
	Position  int              `gorm:"not null" json:"-"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	ProductID string           `gorm:"index;not null;type:text" json:"productId"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName returns the table name for the Item entity.
func (Item) TableName() string {
	return "order_items"
}

// Order is a submitted purchase. TotalPrice is fixed when the order is
// composed and never recomputed.
type Order struct {
	ID               string          `gorm:"primaryKey;type:text" json:"id"`
	Items            []Item          `gorm:"foreignKey:OrderID" json:"orderItems"`
	ShippingAddress1 string          `gorm:"not null;type:text" json:"shippingAddress1"`
	ShippingAddress2 string          `gorm:"type:text" json:"shippingAddress2"`
	City             string          `gorm:"not null;type:text" json:"city"`
	Zip              string          `gorm:"not null;type:text" json:"zip"`
	Country          string          `gorm:"not null;type:text" json:"country"`
	Phone            string          `gorm:"not null;type:text" json:"phone"`
	Status           Status          `gorm:"not null;default:Pending;type:text" json:"status"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalPrice"`
	UserID           string          `gorm:"index;not null;type:text" json:"userId"`
	User             *user.User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DateOrdered      time.Time       `gorm:"index" json:"dateOrdered"`
}

// TableName returns the table name for the Order entity.
func (Order) TableName() string {
	return "orders"
}
