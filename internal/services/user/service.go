package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"restaurante-api/internal/auth"
	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

// ErrUsernameTaken is returned when registering with a username that
// already has an account.
var ErrUsernameTaken = errors.New("username is already taken")

// ErrInvalidCredentials is returned on a failed login. It deliberately
// does not distinguish an unknown username from a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Repository defines the storage operations the user service relies on.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the payload for the token endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token to exchange for a new pair.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPairResponse mirrors the access/refresh shape of the token
// endpoints.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Service manages accounts and issues token pairs.
type Service struct {
	repo   Repository
	tokens *auth.TokenMaker
	logger *logger.Logger
}

// NewService creates a new user service
func NewService(repo Repository, tokens *auth.TokenMaker, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: log,
	}
}

// Register creates a non-administrator account. Administrator accounts
// are provisioned directly in the database.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, requestID string) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user_registered", fmt.Sprintf("User %q registered", user.Username), requestID, map[string]interface{}{
		"user_id": user.ID,
	})

	return user, nil
}

// Login verifies the credentials and issues an access/refresh pair.
func (s *Service) Login(ctx context.Context, req *LoginRequest, requestID string) (*TokenPairResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.tokens.CreateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create token pair: %w", err)
	}

	s.logger.Info("user_logged_in", fmt.Sprintf("User %q logged in", user.Username), requestID, map[string]interface{}{
		"user_id": user.ID,
	})

	return &TokenPairResponse{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The account
// is re-read so a revoked or promoted user gets current claims.
func (s *Service) Refresh(ctx context.Context, req *RefreshRequest, requestID string) (*TokenPairResponse, error) {
	caller, err := s.tokens.VerifyToken(req.Refresh, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	access, refresh, err := s.tokens.CreateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create token pair: %w", err)
	}

	return &TokenPairResponse{Access: access, Refresh: refresh}, nil
}
