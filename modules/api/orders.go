package api

import (
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/modules/orders"
	"github.com/gofiber/fiber/v2"
)

// ListOrders handles GET /orders.
func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	list, err := h.orders.ListOrders(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetOrder handles GET /orders/:id.
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	o, err := h.orders.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// ComposeOrder handles POST /orders. Customers always order for themselves.
func (h *Handlers) ComposeOrder(c *fiber.Ctx) error {
	var req orders.ComposeOrderRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if claims := claimsOf(c); claims != nil && !claims.IsAdmin {
		req.UserID = claims.UserID
	}

	o, err := h.orders.ComposeOrder(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// UpdateOrderStatus handles PUT /orders/:id.
func (h *Handlers) UpdateOrderStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	o, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// DeleteOrder handles DELETE /orders/:id.
func (h *Handlers) DeleteOrder(c *fiber.Ctx) error {
	if err := h.orders.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return deleted(c, "order")
}

// Checkout handles POST /orders/create-checkout-session. The body is the
// list of cart lines.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	var items []orders.ItemInput
	if err := parseBody(c, &items); err != nil {
		return writeError(c, err)
	}
	id, err := h.orders.Checkout(c.UserContext(), items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders.CheckoutResponse{ID: id})
}

// TotalSales handles GET /orders/get/totalsales.
func (h *Handlers) TotalSales(c *fiber.Ctx) error {
	total, err := h.orders.TotalSales(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders.TotalSalesResponse{TotalSales: total})
}

// CountOrders handles GET /orders/get/count.
func (h *Handlers) CountOrders(c *fiber.Ctx) error {
	n, err := h.orders.CountOrders(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return counted(c, "orderCount", n)
}

// UserOrders handles GET /orders/get/userorders/:userid. Customers may only
// read their own orders.
func (h *Handlers) UserOrders(c *fiber.Ctx) error {
	userID := c.Params("userid")
	if claims := claimsOf(c); claims != nil && !claims.IsAdmin && claims.UserID != userID {
		return writeError(c, fmt.Errorf("%w: orders of another user", apperr.ErrForbidden))
	}
	list, err := h.orders.UserOrders(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
