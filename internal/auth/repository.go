// Package auth provides caller authentication for the library content API:
// HS256 access tokens, request middleware that resolves the caller identity,
// and Argon2id password login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GyroZepelix/library-cms/internal/database"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// User represents a row from the users table.
type User struct {
	ID             int64
	Email          string
	PasswordHash   string
	OrganizationID *int64
	CreatedAt      time.Time
}

// Repository provides database access for users.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new auth Repository backed by the given database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, password_hash, organization_id, created_at`

// GetUserByEmail returns the user with the given email (case-insensitive).
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return u, nil
}

// GetUserByID returns the user with the given id.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OrganizationID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
