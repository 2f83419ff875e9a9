package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password; the two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the persistence needed by Service.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// Service issues access tokens for library users.
type Service struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
}

// NewService creates an auth Service.
func NewService(users UserStore, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// HashPassword hashes a password using Argon2id with the library's default
// parameters.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the Argon2id hash.
func VerifyPassword(hash, password string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("verifying password: %w", err)
	}
	return match, nil
}

// Login checks the credentials and returns a signed access token together
// with the authenticated user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	match, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", nil, err
	}
	if !match {
		return "", nil, ErrInvalidCredentials
	}

	token, err := CreateAccessToken(Identity{
		UserID:         user.ID,
		Email:          user.Email,
		OrganizationID: user.OrganizationID,
	}, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CurrentUser loads the user behind an authenticated identity.
func (s *Service) CurrentUser(ctx context.Context, id Identity) (*User, error) {
	user, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading current user: %w", err)
	}
	return user, nil
}
