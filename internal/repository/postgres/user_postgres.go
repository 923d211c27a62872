package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, handle, display_name, email, password_hash,
			profile_image, created_at
		) VALUES (
			:id, :handle, :display_name, :email, :password_hash,
			:profile_image, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, handle, display_name, email, password_hash,
			   profile_image, created_at
		FROM users
		WHERE id = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByHandle retrieves a user by handle (the login username)
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	query := `
		SELECT id, handle, display_name, email, password_hash,
			   profile_image, created_at
		FROM users
		WHERE handle = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by handle: %w", err)
	}

	return &user, nil
}

// Update updates a user's mutable profile fields
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET display_name = :display_name,
			email = :email,
			password_hash = :password_hash,
			profile_image = :profile_image
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Follow records that userID follows followsID. Re-following is a no-op.
func (r *userRepository) Follow(ctx context.Context, userID, followsID uuid.UUID) error {
	query := `
		INSERT INTO follows (user_id, follows, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, follows) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, followsID)
	if err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}

	return nil
}

// Unfollow removes the follow edge. Removing a missing edge is a no-op.
func (r *userRepository) Unfollow(ctx context.Context, userID, followsID uuid.UUID) error {
	query := `DELETE FROM follows WHERE user_id = $1 AND follows = $2`

	_, err := r.db.ExecContext(ctx, query, userID, followsID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	return nil
}

// IsFollowing reports whether userID follows followsID
func (r *userRepository) IsFollowing(ctx context.Context, userID, followsID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND follows = $2)`

	var following bool
	err := r.db.GetContext(ctx, &following, query, userID, followsID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}

	return following, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
