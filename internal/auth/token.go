package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"restaurante-api/internal/models"
)

// TokenKind distinguishes access tokens from refresh tokens so one cannot
// be presented in place of the other.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims carries the resolved caller identity inside a signed token.
type Claims struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"is_admin"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenMaker issues and verifies HS256-signed tokens.
type TokenMaker struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenMaker creates a token maker with the given signing secret and TTLs
func NewTokenMaker(secret string, accessTTL, refreshTTL time.Duration) *TokenMaker {
	return &TokenMaker{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateTokenPair issues an access and a refresh token for the user.
func (m *TokenMaker) CreateTokenPair(user *models.User) (access string, refresh string, err error) {
	access, err = m.create(user, AccessToken, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err = m.create(user, RefreshToken, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return access, refresh, nil
}

func (m *TokenMaker) create(user *models.User, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken parses a signed token of the expected kind and returns the
// caller identity it carries.
func (m *TokenMaker) VerifyToken(signed string, kind TokenKind) (models.Caller, error) {
	token, err := jwt.ParseWithClaims(
		signed,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return m.secret, nil
		},
	)
	if err != nil {
		return models.Caller{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind {
		return models.Caller{}, ErrInvalidToken
	}

	return models.Caller{
		ID:       claims.UserID,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}, nil
}
