package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "wrapped sentinel", err: fmt.Errorf("%w: product 1", ErrNotFound), want: ErrNotFound},
		{name: "double wrapped", err: fmt.Errorf("lookup: %w", fmt.Errorf("%w: category", ErrInvalidReference)), want: ErrInvalidReference},
		{name: "flattened over the bus", err: errors.New("service error: invalid_credentials: wrong password"), want: ErrInvalidCredentials},
		{name: "bare code suffix", err: errors.New("remote: missing_asset"), want: ErrMissingAsset},
		{name: "code inside caller text", err: errors.New(`get-order request failed: invalid_identifier: "not_found:"`), want: ErrInvalidIdentifier},
		{name: "unknown", err: errors.New("boom"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	err := errors.New("request failed: not_found: order abc")
	assert.Equal(t, "order abc", Message(err))
	assert.Equal(t, "", Message(errors.New("boom")))
	assert.Equal(t, `"not_found:"`, Message(errors.New(`invalid_identifier: "not_found:"`)))
}

func TestFromMessage(t *testing.T) {
	err := FromMessage(`not_found: order abc`)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "order abc", Message(err))

	err = FromMessage(`invalid_identifier: "not_found:"`)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.Equal(t, ErrConflict, FromMessage("conflict"))

	err = FromMessage("connection reset")
	assert.Nil(t, KindOf(err))
	assert.EqualError(t, err, "connection reset")
}

type sampleRequest struct {
	ID       string `json:"id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	valid := sampleRequest{ID: uuid.NewString(), Name: "Phone", Quantity: 1}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name    string
		req     sampleRequest
		want    error
		message string
	}{
		{
			name:    "bad id",
			req:     sampleRequest{ID: "123", Name: "Phone", Quantity: 1},
			want:    ErrInvalidIdentifier,
			message: "id is not a valid identifier",
		},
		{
			name:    "missing name",
			req:     sampleRequest{ID: uuid.NewString(), Quantity: 1},
			want:    ErrInvalidArgument,
			message: "name is required",
		},
		{
			name:    "quantity too small",
			req:     sampleRequest{ID: uuid.NewString(), Name: "Phone"},
			want:    ErrInvalidArgument,
			message: "quantity failed gte=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(uuid.NewString()))
	assert.ErrorIs(t, ValidateID("not-a-uuid"), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateID(""), ErrInvalidIdentifier)
}
