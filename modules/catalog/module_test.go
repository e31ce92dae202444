package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/internal/monotest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAdapter_OverRequestReply(t *testing.T) {
	mr := miniredis.RunT(t)
	module := NewModule(setupTestDB(t), CacheConfig{RedisAddr: mr.Addr(), Prefix: "test:", TTL: time.Minute})
	adapter := NewCatalogAdapter(monotest.Start(t, "catalog", module))
	ctx := context.Background()

	category, err := adapter.CreateCategory(ctx, CategoryInput{Name: "Phones"})
	require.NoError(t, err)

	created, err := adapter.CreateProduct(ctx, productInput(category.ID))
	require.NoError(t, err)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Phones", created.Category.Name)

	got, err := adapter.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("199.99").Equal(got.Price), "got %s", got.Price)

	listed, err := adapter.ListProducts(ctx, []string{category.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	count, err := adapter.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	t.Run("errors keep their kind", func(t *testing.T) {
		_, err := adapter.GetProduct(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = adapter.GetProduct(ctx, "42")
		assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)

		_, err = adapter.CreateProduct(ctx, productInput(uuid.NewString()))
		assert.ErrorIs(t, err, apperr.ErrInvalidReference)

		noImage := productInput(category.ID)
		noImage.Image = ""
		_, err = adapter.CreateProduct(ctx, noImage)
		assert.ErrorIs(t, err, apperr.ErrMissingAsset)
	})
}
