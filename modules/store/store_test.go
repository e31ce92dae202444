package store

import (
	"context"
	"errors"
	"testing"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/domain/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestModule_StartMigratesAndReportsHealth(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	m := NewModule(db, "sqlite")
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { m.Stop(context.Background()) })

	assert.True(t, db.Migrator().HasTable(&catalog.Product{}))
	assert.True(t, db.Migrator().HasTable("order_items"))

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "sqlite", status.Details["driver"])

	category := catalog.Category{ID: uuid.NewString(), Name: "Phones"}
	require.NoError(t, db.Create(&category).Error)

	var found catalog.Category
	err = db.First(&found, "id = ?", uuid.NewString()).Error
	assert.ErrorIs(t, Classify(err, "category"), apperr.ErrNotFound)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not found", err: gorm.ErrRecordNotFound, want: apperr.ErrNotFound},
		{name: "duplicate", err: gorm.ErrDuplicatedKey, want: apperr.ErrConflict},
		{name: "already classified", err: apperr.ErrInvalidReference, want: apperr.ErrInvalidReference},
		{name: "driver failure", err: errors.New("disk I/O error"), want: apperr.ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err, "thing %d", 1), tt.want)
		})
	}

	assert.NoError(t, Classify(nil, "thing"))
}
