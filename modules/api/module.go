package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/eshop-backend/domain/catalog"
	catalogmod "github.com/example/eshop-backend/modules/catalog"
	"github.com/example/eshop-backend/modules/identity"
	"github.com/example/eshop-backend/modules/orders"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config configures the HTTP server.
type Config struct {
	Port           int
	APIURL         string
	PublicBaseURL  string
	Policy         *AccessPolicy
	RequestTimeout time.Duration
	MaxUploadSize  int
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg      Config
	app      *fiber.App
	media    MediaSource
	identity identity.IdentityPort
	catalog  catalogmod.CatalogPort
	orders   orders.OrdersPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg Config) *APIModule {
	return &APIModule{cfg: cfg}
}

// SetMedia wires the upload storage.
func (m *APIModule) SetMedia(media MediaSource) {
	m.media = media
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"identity", "catalog", "orders"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "identity":
		m.identity = identity.NewIdentityAdapter(container)
	case "catalog":
		m.catalog = catalogmod.NewCatalogAdapter(container)
	case "orders":
		m.orders = orders.NewOrdersAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.identity == nil || m.catalog == nil || m.orders == nil {
		return fmt.Errorf("identity, catalog and orders dependencies must be set")
	}
	if m.cfg.Policy == nil {
		policy, err := LoadPolicy("", m.cfg.APIURL)
		if err != nil {
			return err
		}
		m.cfg.Policy = policy
	}

	handlers := NewHandlers(m.identity, m.catalog, m.orders, m.media, m.cfg.PublicBaseURL)
	m.app = newApp(m.cfg, handlers, m.identity)

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s (api prefix %s)", addr, m.cfg.APIURL)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":      m.cfg.Port,
			"adminOnly": m.cfg.Policy != nil && *m.cfg.Policy.AdminOnly,
		},
	}
}

// newApp builds the Fiber application with middleware and routes.
func newApp(cfg Config, h *Handlers, validator TokenValidator) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if cfg.MaxUploadSize > 0 {
		bodyLimit = cfg.MaxUploadSize*catalog.MaxGalleryImages + 1024*1024
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		BodyLimit:             bodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())
	if cfg.RequestTimeout > 0 {
		app.Use(RequestTimeout(cfg.RequestTimeout))
	}
	app.Use(AccessGate(cfg.Policy, validator))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})
	app.Get("/public/uploads/:name", h.ServeUpload)

	v1 := app.Group(cfg.APIURL)

	products := v1.Group("/products")
	products.Get("/get/count", h.CountProducts)
	products.Get("/get/featured/:count?", h.FeaturedProducts)
	products.Put("/gallery-images/:id", h.SetGallery)
	products.Get("/", h.ListProducts)
	products.Post("/", h.CreateProduct)
	products.Get("/:id", h.GetProduct)
	products.Put("/:id", h.UpdateProduct)
	products.Delete("/:id", h.DeleteProduct)

	categories := v1.Group("/categories")
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Get("/:id", h.GetCategory)
	categories.Put("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)

	orderRoutes := v1.Group("/orders")
	orderRoutes.Post("/create-checkout-session", h.Checkout)
	orderRoutes.Get("/get/totalsales", h.TotalSales)
	orderRoutes.Get("/get/count", h.CountOrders)
	orderRoutes.Get("/get/userorders/:userid", h.UserOrders)
	orderRoutes.Get("/", h.ListOrders)
	orderRoutes.Post("/", h.ComposeOrder)
	orderRoutes.Get("/:id", h.GetOrder)
	orderRoutes.Put("/:id", h.UpdateOrderStatus)
	orderRoutes.Delete("/:id", h.DeleteOrder)

	users := v1.Group("/users")
	users.Post("/login", h.Login)
	users.Post("/register", h.Register)
	users.Get("/get/count", h.CountUsers)
	users.Get("/", h.ListUsers)
	users.Post("/", h.CreateUser)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)

	return app
}
