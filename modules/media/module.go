package media

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/go-monolith/mono/pkg/types"
)

// Module stores product images in an fs-jetstream bucket.
type Module struct {
	bucketName string
	maxSize    int64
	storage    *fsjetstream.PluginModule
	service    *Service
	logger     types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.UsePluginModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new media module backed by the named bucket.
func NewModule(bucketName string, maxSize int64, logger types.Logger) *Module {
	return &Module{
		bucketName: bucketName,
		maxSize:    maxSize,
		logger:     logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "media"
}

// SetPlugin receives the storage plugin from the framework.
func (m *Module) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "storage" {
		return
	}
	storage, ok := plugin.(*fsjetstream.PluginModule)
	if !ok {
		m.logger.Error("Invalid plugin type for storage",
			"alias", alias,
			"expected", "*fsjetstream.PluginModule")
		return
	}
	m.storage = storage
	m.logger.Info("Received storage plugin", "alias", alias)
}

// Start resolves the upload bucket and creates the service.
func (m *Module) Start(_ context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("required plugin 'storage' not registered")
	}

	bucket := m.storage.Bucket(m.bucketName)
	if bucket == nil {
		return fmt.Errorf("bucket '%s' not found in storage plugin", m.bucketName)
	}

	service, err := NewService(newBucketStore(bucket), m.maxSize)
	if err != nil {
		return err
	}
	m.service = service

	m.logger.Info("Media module started", "bucket", m.bucketName, "maxSize", m.maxSize)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Media module stopped")
	return nil
}

// Health reports whether the bucket is available.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"bucket": m.bucketName},
	}
}

// Service returns the media service. It is nil until the module starts.
func (m *Module) Service() *Service {
	return m.service
}
