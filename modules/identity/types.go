package identity

import (
	domain "github.com/example/eshop-backend/domain/user"
)

// CreateUserRequest carries the fields of a new account. IsAdmin is honoured
// only by the create-user service; register always creates a customer.
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// UserResponse wraps a user record. The password hash never leaves the module.
type UserResponse struct {
	User domain.User `json:"user"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the email of the authenticated user and its token.
type LoginResponse struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid   bool   `json:"valid"`
	UserID  string `json:"userId,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// ListUsersRequest lists every account.
type ListUsersRequest struct{}

// ListUsersResponse represents a list of users.
type ListUsersResponse struct {
	Users []domain.User `json:"users"`
}

// UpdateUserRequest is a partial update. Nil fields keep their current value;
// a nil or empty password keeps the stored hash.
type UpdateUserRequest struct {
	UserID    string  `json:"userId" validate:"required,uuid"`
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Phone     *string `json:"phone,omitempty"`
	IsAdmin   *bool   `json:"isAdmin,omitempty"`
	Street    *string `json:"street,omitempty"`
	Apartment *string `json:"apartment,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	City      *string `json:"city,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// DeleteUserRequest represents a delete user request.
type DeleteUserRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// DeleteUserResponse confirms a deletion.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

// CountUsersRequest counts accounts.
type CountUsersRequest struct{}

// CountUsersResponse carries the number of accounts.
type CountUsersResponse struct {
	Count int64 `json:"count"`
}
