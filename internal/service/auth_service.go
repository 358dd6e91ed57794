package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// AuthService handles registration and login.
type AuthService struct {
	users     *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

// NewAuthService creates an AuthService.
func NewAuthService(users *repository.UserRepository, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// RegisterInput is the self-registration request.
type RegisterInput struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

// Register creates an account. The ADMIN role cannot be self-assigned.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() || in.Role == models.RoleAdmin {
		return nil, utils.Validation("INVALID_ROLE", "role must be one of WHOLESALER, RETAILER, SUPPLIER, CUSTOMER")
	}
	if len(in.Password) < 8 {
		return nil, utils.Validation("WEAK_PASSWORD", "password must be at least 8 characters")
	}
	exists, err := s.users.Exists(in.Username, in.Email)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if exists {
		return nil, utils.Conflict("USER_EXISTS", "username or email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal(err)
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, utils.Internal(err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, utils.Forbidden("INVALID_CREDENTIALS", "invalid email or password")
		}
		return "", nil, utils.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.Forbidden("INVALID_CREDENTIALS", "invalid email or password")
	}
	token, err := utils.GenerateJWT(user, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, utils.Internal(err)
	}
	return token, user, nil
}
