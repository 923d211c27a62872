package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Follow(ctx context.Context, userID, followsID uuid.UUID) error
	Unfollow(ctx context.Context, userID, followsID uuid.UUID) error
	IsFollowing(ctx context.Context, userID, followsID uuid.UUID) (bool, error)
}
