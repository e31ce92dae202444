package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/user"
	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/helper"
)

// IdentityPort defines the operations other modules use to reach the
// identity module.
type IdentityPort interface {
	Register(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
	CountUsers(ctx context.Context) (int64, error)
}

// IdentityAdapter implements IdentityPort using the service container.
type IdentityAdapter struct {
	container mono.ServiceContainer
}

var _ IdentityPort = (*IdentityAdapter)(nil)

// NewIdentityAdapter creates a new IdentityAdapter.
func NewIdentityAdapter(container mono.ServiceContainer) *IdentityAdapter {
	return &IdentityAdapter{
		container: container,
	}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	)
	if err == nil {
		return nil
	}
	var remote *monoerrors.RemoteError
	if errors.As(err, &remote) {
		return apperr.FromMessage(remote.Message)
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}

// Register creates a customer account.
func (a *IdentityAdapter) Register(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateUser creates an account, optionally an administrator.
func (a *IdentityAdapter) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "create-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates a user.
func (a *IdentityAdapter) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp LoginResponse
	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates a token and returns claims.
func (a *IdentityAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnauthorized, resp.Error)
	}

	return &domain.Claims{
		UserID:  resp.UserID,
		IsAdmin: resp.IsAdmin,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *IdentityAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := call(ctx, a.container, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers returns every user.
func (a *IdentityAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp ListUsersResponse
	if err := call(ctx, a.container, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UpdateUser applies a partial update.
func (a *IdentityAdapter) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, "update-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser removes a user.
func (a *IdentityAdapter) DeleteUser(ctx context.Context, userID string) error {
	req := DeleteUserRequest{UserID: userID}
	var resp DeleteUserResponse
	return call(ctx, a.container, "delete-user", &req, &resp)
}

// CountUsers returns the number of users.
func (a *IdentityAdapter) CountUsers(ctx context.Context) (int64, error) {
	var resp CountUsersResponse
	if err := call(ctx, a.container, "count-users", &CountUsersRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
