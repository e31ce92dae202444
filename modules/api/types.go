package api

import (
	"context"

	"github.com/example/eshop-backend/modules/media"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DeletedResponse confirms a deletion.
type DeletedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusRequest changes the status of an order.
type StatusRequest struct {
	Status string `json:"status"`
}

// MediaStore stores and serves uploaded images.
type MediaStore interface {
	Save(ctx context.Context, filename, declaredType string, data []byte) (*media.Upload, error)
	Open(name string) ([]byte, string, error)
	Delete(name string) error
}

// MediaSource yields the media store once it is ready.
type MediaSource interface {
	Service() *media.Service
}
