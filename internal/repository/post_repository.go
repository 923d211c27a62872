package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	// GetTrending returns the most recent public posts, newest first.
	GetTrending(ctx context.Context, limit int) ([]*domain.Post, error)
	// GetHome returns posts by the user and by everyone the user follows.
	GetHome(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error)
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error)
	GetLiked(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error)
	GetBookmarked(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error)

	Bookmark(ctx context.Context, userID, postID uuid.UUID) error
	DeleteBookmark(ctx context.Context, userID, postID uuid.UUID) error
	IsBookmarked(ctx context.Context, userID, postID uuid.UUID) (bool, error)

	Boost(ctx context.Context, userID, postID uuid.UUID) error
	DeleteBoost(ctx context.Context, userID, postID uuid.UUID) error
	IsBoosted(ctx context.Context, userID, postID uuid.UUID) (bool, error)

	React(ctx context.Context, reaction *domain.Reaction) error
	GetReaction(ctx context.Context, userID, postID uuid.UUID) (int16, error)
	AggregateReactions(ctx context.Context, postID uuid.UUID) (*domain.AggregateReactions, error)
}
