// Package services – AuthService
//
// This file implements the AuthService, which owns account creation and
// credential verification. Passwords are stored as bcrypt hashes; successful
// signup and login both mint an HS256 bearer token whose subject is the user
// id. Service-level errors (ErrEmailTaken, ErrInvalidCredentials) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
)

// AuthClaims is the JWT payload carried by every bearer token.
type AuthClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService implements signup, login, and token verification.
type AuthService struct {
	// DB is the database handle used for account operations.
	DB *gorm.DB
	// Secret signs and verifies HS256 tokens.
	Secret string
	// TokenTTL bounds token lifetime; zero falls back to 24h.
	TokenTTL time.Duration
	// BcryptCost overrides the hash cost; zero uses bcrypt.DefaultCost.
	BcryptCost int
}

// Signup creates an account for email with the given password and optional
// demographic attributes, then returns the stored user and a fresh token.
//
// Errors:
//   - ErrEmailTaken when the email already belongs to an account.
//   - The underlying DB or hashing error for unexpected failures.
func (s *AuthService) Signup(ctx context.Context, email, password, name string, age *int, gender, intent string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, "", err
	}

	u, err := repo.CreateUser(ctx, s.DB, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(name),
		Age:          age,
		Gender:       gender,
		DatingIntent: intent,
	})
	if err != nil {
		// A concurrent signup can beat the existence check to the unique index.
		if isDuplicate(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies the credential pair and returns the account and a fresh
// token. An unknown email and a wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// IssueToken mints a signed HS256 token for userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now().UTC()
	claims := &AuthClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// VerifyToken validates a bearer token and returns the authenticated user
// id. It is the capability check consumed by the auth middleware: the result
// is an explicit (userID, error) pair, never a panic.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.Secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", errors.New("invalid token")
	}
	return claims.UserID, nil
}
