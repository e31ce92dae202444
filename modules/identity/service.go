package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/eshop-backend/domain/apperr"
	domain "github.com/example/eshop-backend/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = fmt.Errorf("%w: the password is wrong", apperr.ErrInvalidCredentials)
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most 72 bytes", apperr.ErrInvalidArgument)
)

const maxPasswordBytes = 72

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Email string
	Token string
}

// IdentityService handles account and token business logic.
type IdentityService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *IdentityService {
	return &IdentityService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Register creates a customer account. Any admin flag in the request is ignored.
func (s *IdentityService) Register(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.IsAdmin = false
	return s.CreateUser(ctx, req)
}

// CreateUser creates an account with the requested admin flag.
func (s *IdentityService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := apperr.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(ctx, req.Email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		IsAdmin:      req.IsAdmin,
		Street:       req.Street,
		Apartment:    req.Apartment,
		Zip:          req.Zip,
		City:         req.City,
		Country:      req.Country,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a signed token.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if err := apperr.Validate(LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{Email: user.Email, Token: token}, nil
}

// ValidateToken validates a token and returns its claims.
func (s *IdentityService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := apperr.ValidateID(userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

// ListUsers returns every user.
func (s *IdentityService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateUser applies a partial update.
func (s *IdentityService) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.User, error) {
	// An empty name, email or password keeps the current value.
	req.Name = nilIfBlank(req.Name)
	req.Email = nilIfBlank(req.Email)
	req.Password = nilIfBlank(req.Password)
	if err := apperr.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.repo.EmailExists(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrUserExists
			}
			user.Email = email
		}
	}

	if req.Password != nil {
		if len(*req.Password) > maxPasswordBytes {
			return nil, ErrPasswordTooLong
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	assign(&user.Name, req.Name)
	assign(&user.Phone, req.Phone)
	assign(&user.Street, req.Street)
	assign(&user.Apartment, req.Apartment)
	assign(&user.Zip, req.Zip)
	assign(&user.City, req.City)
	assign(&user.Country, req.Country)
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user.
func (s *IdentityService) DeleteUser(ctx context.Context, userID string) error {
	if err := apperr.ValidateID(userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

// CountUsers returns the number of users. Zero is a valid count.
func (s *IdentityService) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// IsTokenExpired reports whether err marks an expired token.
func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func nilIfBlank(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
