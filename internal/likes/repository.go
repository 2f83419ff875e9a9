// Package likes records per-user likes on library entries and keeps each
// entry's like counter consistent with them.
package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GyroZepelix/library-cms/internal/database"
)

var (
	// ErrContentNotFound is returned when the liked entry does not exist.
	ErrContentNotFound = errors.New("library entry not found")
	// ErrAlreadyLiked is returned when the user already liked the entry in
	// the same organization scope.
	ErrAlreadyLiked = errors.New("content already liked")
	// ErrNotLiked is returned when unliking an entry that has no like.
	ErrNotLiked = errors.New("content not liked")
	// ErrOrganizationNotFound is returned when the like is scoped to an
	// organization that does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrUserNotFound is returned when the caller's user record no longer
	// exists.
	ErrUserNotFound = errors.New("user not found")
)

const (
	lockContentQuery = `SELECT id FROM library_contents WHERE id = $1 FOR UPDATE`

	userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	organizationExistsQuery = `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`

	insertLikeQuery = `INSERT INTO user_likes (user_id, content_id, organization_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at`

	deleteLikeQuery = `DELETE FROM user_likes
		WHERE user_id = $1 AND content_id = $2 AND organization_id IS NOT DISTINCT FROM $3`

	incrementLikeCountQuery = `UPDATE library_contents SET like_count = COALESCE(like_count, 0) + 1
		WHERE id = $1 RETURNING like_count`

	decrementLikeCountQuery = `UPDATE library_contents SET like_count = GREATEST(COALESCE(like_count, 0) - 1, 0)
		WHERE id = $1 RETURNING like_count`

	likedContentIDsQuery = `SELECT DISTINCT content_id FROM user_likes WHERE user_id = $1 ORDER BY content_id`
)

// Like is a stored user like.
type Like struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	ContentID      int64     `json:"contentId"`
	OrganizationID *int64    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Target identifies the (user, content, organization) triple a like is
// unique over. A nil organization is its own scope.
type Target struct {
	UserID         int64
	ContentID      int64
	OrganizationID *int64
}

// Repository persists likes in PostgreSQL.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new likes Repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Like inserts a like for target and increments the entry's like counter in
// one transaction, returning the like and the new counter value.
func (r *Repository) Like(ctx context.Context, target Target) (*Like, int64, error) {
	var like *Like
	var count int64

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockContent(ctx, tx, target.ContentID); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, target); err != nil {
			return err
		}

		l := Like{UserID: target.UserID, ContentID: target.ContentID, OrganizationID: target.OrganizationID}
		err := tx.QueryRow(ctx, insertLikeQuery,
			target.UserID, target.ContentID, target.OrganizationID,
		).Scan(&l.ID, &l.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyLiked
		}
		if err != nil {
			return fmt.Errorf("inserting like: %w", err)
		}
		like = &l

		err = tx.QueryRow(ctx, incrementLikeCountQuery, target.ContentID).Scan(&count)
		if err != nil {
			return fmt.Errorf("incrementing like count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return like, count, nil
}

// Unlike deletes the like for target and decrements the entry's like counter
// in one transaction, returning the new counter value. The counter never
// drops below zero.
func (r *Repository) Unlike(ctx context.Context, target Target) (int64, error) {
	var count int64

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockContent(ctx, tx, target.ContentID); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, target); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, deleteLikeQuery,
			target.UserID, target.ContentID, target.OrganizationID,
		)
		if err != nil {
			return fmt.Errorf("deleting like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotLiked
		}

		err = tx.QueryRow(ctx, decrementLikeCountQuery, target.ContentID).Scan(&count)
		if err != nil {
			return fmt.Errorf("decrementing like count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LikedContentIDs returns the distinct ids of entries userID has liked in
// any organization scope.
func (r *Repository) LikedContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Pool().Query(ctx, likedContentIDsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("querying liked entries: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scanning liked entries: %w", err)
	}
	return ids, nil
}

// lockContent takes a row lock on the entry so concurrent like and unlike
// calls on it serialise.
func lockContent(ctx context.Context, tx pgx.Tx, contentID int64) error {
	var id int64
	err := tx.QueryRow(ctx, lockContentQuery, contentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrContentNotFound
	}
	if err != nil {
		return fmt.Errorf("locking entry: %w", err)
	}
	return nil
}

// checkReferences reports a missing user or organization before the insert
// reaches the foreign keys.
func checkReferences(ctx context.Context, tx pgx.Tx, target Target) error {
	var exists bool
	if err := tx.QueryRow(ctx, userExistsQuery, target.UserID).Scan(&exists); err != nil {
		return fmt.Errorf("checking user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if target.OrganizationID == nil {
		return nil
	}
	if err := tx.QueryRow(ctx, organizationExistsQuery, *target.OrganizationID).Scan(&exists); err != nil {
		return fmt.Errorf("checking organization: %w", err)
	}
	if !exists {
		return ErrOrganizationNotFound
	}
	return nil
}
