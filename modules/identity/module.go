package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/eshop-backend/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// Config configures token signing and password hashing.
type Config struct {
	JWT        JWTConfig
	BcryptCost int
}

// IdentityModule provides account and token services.
type IdentityModule struct {
	db      *gorm.DB
	config  Config
	service *IdentityService
}

// Compile-time interface checks.
var _ mono.Module = (*IdentityModule)(nil)
var _ mono.ServiceProviderModule = (*IdentityModule)(nil)
var _ mono.HealthCheckableModule = (*IdentityModule)(nil)

// NewModule creates a new IdentityModule.
func NewModule(db *gorm.DB, config Config) *IdentityModule {
	return &IdentityModule{
		db:     db,
		config: config,
	}
}

// Name returns the module name.
func (m *IdentityModule) Name() string {
	return "identity"
}

// Start initializes the identity module.
func (m *IdentityModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}

	repo := NewUserRepository(m.db)
	hasher := NewPasswordHasher(m.config.BcryptCost)
	jwtManager := NewJWTManager(m.config.JWT)

	m.service = NewIdentityService(repo, hasher, jwtManager)

	log.Printf("[identity] Module started (token ttl: %s, bcrypt cost: %d)", jwtManager.TokenDuration(), hasher.cost)
	return nil
}

// Stop shuts down the module.
func (m *IdentityModule) Stop(_ context.Context) error {
	log.Println("[identity] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *IdentityModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "service not initialized",
		}
	}

	if err := store.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *IdentityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "register", json.Unmarshal, json.Marshal, m.handleRegister); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "create-user", json.Unmarshal, json.Marshal, m.handleCreateUser); err != nil {
		return fmt.Errorf("failed to register create-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "login", json.Unmarshal, json.Marshal, m.handleLogin); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser); err != nil {
		return fmt.Errorf("failed to register update-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser); err != nil {
		return fmt.Errorf("failed to register delete-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "count-users", json.Unmarshal, json.Marshal, m.handleCountUsers); err != nil {
		return fmt.Errorf("failed to register count-users service: %w", err)
	}

	log.Printf("[identity] Registered services: register, create-user, login, validate-token, get-user, list-users, update-user, delete-user, count-users")
	return nil
}

func (m *IdentityModule) handleRegister(ctx context.Context, req CreateUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.Register(ctx, req)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *IdentityModule) handleCreateUser(ctx context.Context, req CreateUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.CreateUser(ctx, req)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *IdentityModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	result, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{User: result.Email, Token: result.Token}, nil
}

// handleValidateToken reports validation failures in the response body
// rather than as an error.
func (m *IdentityModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if IsTokenExpired(err) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:   true,
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin,
	}, nil
}

func (m *IdentityModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *IdentityModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	if err != nil {
		return ListUsersResponse{}, err
	}
	return ListUsersResponse{Users: users}, nil
}

func (m *IdentityModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.UpdateUser(ctx, req)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *IdentityModule) handleDeleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.DeleteUser(ctx, req.UserID); err != nil {
		return DeleteUserResponse{}, err
	}
	return DeleteUserResponse{Deleted: true}, nil
}

func (m *IdentityModule) handleCountUsers(ctx context.Context, _ CountUsersRequest, _ *mono.Msg) (CountUsersResponse, error) {
	count, err := m.service.CountUsers(ctx)
	if err != nil {
		return CountUsersResponse{}, err
	}
	return CountUsersResponse{Count: count}, nil
}
