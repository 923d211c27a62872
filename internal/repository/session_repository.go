package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
)

type SessionRepository interface {
	// Upsert inserts the session, or, when a row for the same
	// (user_id, fingerprint) already exists, advances that row's expires_at
	// and returns it with its original id and created_at intact. This bounds
	// live sessions to one per distinct client.
	Upsert(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// GetByID returns the row even when it is past its expiry; expiry is a
	// read-time filter applied by the caller, not a deletion trigger.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
