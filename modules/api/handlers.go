package api

import (
	"fmt"
	"strconv"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/modules/catalog"
	"github.com/example/eshop-backend/modules/identity"
	"github.com/example/eshop-backend/modules/orders"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	identity      identity.IdentityPort
	catalog       catalog.CatalogPort
	orders        orders.OrdersPort
	media         MediaSource
	publicBaseURL string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	identityPort identity.IdentityPort,
	catalogPort catalog.CatalogPort,
	ordersPort orders.OrdersPort,
	media MediaSource,
	publicBaseURL string,
) *Handlers {
	return &Handlers{
		identity:      identityPort,
		catalog:       catalogPort,
		orders:        ordersPort,
		media:         media,
		publicBaseURL: publicBaseURL,
	}
}

func (h *Handlers) mediaStore() (MediaStore, error) {
	if h.media != nil {
		if svc := h.media.Service(); svc != nil {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("%w: media storage is not ready", apperr.ErrUnavailable)
}

func (h *Handlers) baseURL(c *fiber.Ctx) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	return c.BaseURL()
}

func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return fmt.Errorf("%w: invalid request body", apperr.ErrInvalidArgument)
	}
	return nil
}

func deleted(c *fiber.Ctx, what string) error {
	return c.JSON(DeletedResponse{Success: true, Message: fmt.Sprintf("the %s is deleted", what)})
}

func counted(c *fiber.Ctx, key string, n int64) error {
	return c.JSON(fiber.Map{"success": true, key: n})
}

// ListUsers handles GET /users.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.identity.ListUsers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /users/:id.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	u, err := h.identity.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u)
}

// CreateUser handles POST /users. Administrators may create other
// administrators here.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req identity.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	u, err := h.identity.CreateUser(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Register handles POST /users/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req identity.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	u, err := h.identity.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Login handles POST /users/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	resp, err := h.identity.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// UpdateUser handles PUT /users/:id.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	var req identity.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	req.UserID = c.Params("id")
	u, err := h.identity.UpdateUser(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u)
}

// DeleteUser handles DELETE /users/:id.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	if err := h.identity.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return deleted(c, "user")
}

// CountUsers handles GET /users/get/count.
func (h *Handlers) CountUsers(c *fiber.Ctx) error {
	n, err := h.identity.CountUsers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return counted(c, "userCount", n)
}

// ServeUpload handles GET /public/uploads/:name.
func (h *Handlers) ServeUpload(c *fiber.Ctx) error {
	store, err := h.mediaStore()
	if err != nil {
		return writeError(c, err)
	}
	data, contentType, err := store.Open(c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}

func intParam(c *fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Params(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", apperr.ErrInvalidArgument, name)
	}
	return n, nil
}
