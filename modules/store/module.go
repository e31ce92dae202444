package store

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"gorm.io/gorm"
)

// StoreModule migrates the schema on start and closes the pool on stop.
type StoreModule struct {
	db     *gorm.DB
	driver string
}

// Compile-time interface checks.
var _ mono.Module = (*StoreModule)(nil)
var _ mono.HealthCheckableModule = (*StoreModule)(nil)

// NewModule creates a new StoreModule around an open connection.
func NewModule(db *gorm.DB, driver string) *StoreModule {
	return &StoreModule{
		db:     db,
		driver: driver,
	}
}

// Name returns the module name.
func (m *StoreModule) Name() string {
	return "store"
}

// Start migrates the schema.
func (m *StoreModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := Migrate(m.db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Printf("[store] Module started (driver: %s)", m.driver)
	return nil
}

// Stop closes the connection pool.
func (m *StoreModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[store] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *StoreModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.driver,
		},
	}
}
