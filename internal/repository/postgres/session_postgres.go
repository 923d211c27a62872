package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert inserts the session or, on a (user_id, fingerprint) conflict,
// advances the existing row's expiry and returns that row. The RETURNING
// clause yields the surviving row either way, so callers always see the id
// that the cookies must carry.
func (r *sessionRepository) Upsert(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, fingerprint, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, fingerprint)
		DO UPDATE SET expires_at = EXCLUDED.expires_at
		RETURNING id, user_id, fingerprint, expires_at, created_at`

	var stored domain.Session
	err := r.db.GetContext(ctx, &stored, query,
		session.ID, session.UserID, session.Fingerprint,
		session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}

	return &stored, nil
}

// GetByID retrieves a session by its ID. Expired rows are still returned;
// the auth middleware applies the expiry filter.
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_id, fingerprint, expires_at, created_at
		FROM sessions
		WHERE id = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return &session, nil
}

// Delete removes a session, ending it immediately (logout).
func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
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

// DeleteExpired removes all expired sessions. Run by external cleanup, never
// by the request path.
func (r *sessionRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	_, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return nil
}
