// Package monotest runs modules inside an in-process mono application so
// tests can reach their services through the real request-reply path.
package monotest

import (
	"context"
	"net"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/require"
)

// consumer is a bare module that depends on the module under test and keeps
// the service container the framework hands it.
type consumer struct {
	dependency string
	container  mono.ServiceContainer
}

var _ mono.DependentModule = (*consumer)(nil)

func (c *consumer) Name() string {
	return "test-consumer"
}

func (c *consumer) Start(context.Context) error {
	return nil
}

func (c *consumer) Stop(context.Context) error {
	return nil
}

func (c *consumer) Dependencies() []string {
	return []string{c.dependency}
}

func (c *consumer) SetDependencyServiceContainer(_ string, container mono.ServiceContainer) {
	c.container = container
}

// Start registers the modules, starts the application on a free NATS port and
// returns the service container of the module named dependency. The
// application is stopped when the test ends.
func Start(t testing.TB, dependency string, modules ...mono.Module) mono.ServiceContainer {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithNATSPort(freePort(t)),
	)
	require.NoError(t, err)

	for _, m := range modules {
		require.NoError(t, app.Register(m))
	}
	c := &consumer{dependency: dependency}
	require.NoError(t, app.Register(c))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, c.container, "no service container for %s", dependency)
	return c.container
}

func freePort(t testing.TB) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
