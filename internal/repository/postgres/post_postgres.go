package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
)

type postRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, headline, message, reply_to, time_posted, created_at`

// Create inserts a new post into the database
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, user_id, headline, message, reply_to, time_posted, created_at)
		VALUES (:id, :user_id, :headline, :message, :reply_to, :time_posted, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post domain.Post
	err := r.db.GetContext(ctx, &post, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return &post, nil
}

// GetTrending retrieves the most recent public posts, newest first
func (r *postRepository) GetTrending(ctx context.Context, limit int) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE time_posted < NOW()
		ORDER BY time_posted DESC
		LIMIT $1`

	var posts []*domain.Post
	err := r.db.SelectContext(ctx, &posts, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending posts: %w", err)
	}

	return posts, nil
}

// GetHome retrieves posts by the user and by everyone the user follows
func (r *postRepository) GetHome(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE time_posted < NOW()
		  AND (user_id = $1
			   OR user_id IN (SELECT follows FROM follows WHERE user_id = $1))
		ORDER BY time_posted DESC
		LIMIT $2`

	var posts []*domain.Post
	err := r.db.SelectContext(ctx, &posts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get home posts: %w", err)
	}

	return posts, nil
}

// GetByUser retrieves a user's public posts, newest first
func (r *postRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1 AND time_posted < NOW()
		ORDER BY time_posted DESC
		LIMIT $2`

	var posts []*domain.Post
	err := r.db.SelectContext(ctx, &posts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by user: %w", err)
	}

	return posts, nil
}

// GetLiked retrieves posts the user has reacted to with a like
func (r *postRepository) GetLiked(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.headline, p.message, p.reply_to, p.time_posted, p.created_at
		FROM posts p
		JOIN reactions r ON r.post_id = p.id
		WHERE r.user_id = $1 AND r.like_status > 0
		ORDER BY p.time_posted DESC
		LIMIT $2`

	var posts []*domain.Post
	err := r.db.SelectContext(ctx, &posts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked posts: %w", err)
	}

	return posts, nil
}

// GetBookmarked retrieves posts the user has bookmarked
func (r *postRepository) GetBookmarked(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.headline, p.message, p.reply_to, p.time_posted, p.created_at
		FROM posts p
		JOIN bookmarks b ON b.post_id = p.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2`

	var posts []*domain.Post
	err := r.db.SelectContext(ctx, &posts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarked posts: %w", err)
	}

	return posts, nil
}

// Bookmark records a bookmark. Bookmarking the same post twice is a no-op.
func (r *postRepository) Bookmark(ctx context.Context, userID, postID uuid.UUID) error {
	query := `
		INSERT INTO bookmarks (user_id, post_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, post_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to bookmark post: %w", err)
	}

	return nil
}

// DeleteBookmark removes a bookmark. Removing a missing bookmark is a no-op.
func (r *postRepository) DeleteBookmark(ctx context.Context, userID, postID uuid.UUID) error {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`

	_, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

// IsBookmarked reports whether the user has bookmarked the post
func (r *postRepository) IsBookmarked(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND post_id = $2)`

	var bookmarked bool
	err := r.db.GetContext(ctx, &bookmarked, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}

	return bookmarked, nil
}

// Boost records a boost; boosting again refreshes boosted_at.
func (r *postRepository) Boost(ctx context.Context, userID, postID uuid.UUID) error {
	query := `
		INSERT INTO boosts (user_id, post_id, boosted_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, post_id) DO UPDATE SET boosted_at = EXCLUDED.boosted_at`

	_, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to boost post: %w", err)
	}

	return nil
}

// DeleteBoost removes a boost. Removing a missing boost is a no-op.
func (r *postRepository) DeleteBoost(ctx context.Context, userID, postID uuid.UUID) error {
	query := `DELETE FROM boosts WHERE user_id = $1 AND post_id = $2`

	_, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete boost: %w", err)
	}

	return nil
}

// IsBoosted reports whether the user has boosted the post
func (r *postRepository) IsBoosted(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM boosts WHERE user_id = $1 AND post_id = $2)`

	var boosted bool
	err := r.db.GetContext(ctx, &boosted, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to check boost: %w", err)
	}

	return boosted, nil
}

// React upserts the viewer's reaction; one row per (user_id, post_id).
func (r *postRepository) React(ctx context.Context, reaction *domain.Reaction) error {
	query := `
		INSERT INTO reactions (user_id, post_id, like_status, created_at)
		VALUES (:user_id, :post_id, :like_status, :created_at)
		ON CONFLICT (user_id, post_id) DO UPDATE SET like_status = EXCLUDED.like_status`

	_, err := r.db.NamedExecContext(ctx, query, reaction)
	if err != nil {
		return fmt.Errorf("failed to react to post: %w", err)
	}

	return nil
}

// GetReaction returns the viewer's like_status for a post, 0 when none
func (r *postRepository) GetReaction(ctx context.Context, userID, postID uuid.UUID) (int16, error) {
	query := `SELECT like_status FROM reactions WHERE user_id = $1 AND post_id = $2`

	var status int16
	err := r.db.GetContext(ctx, &status, query, userID, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get reaction: %w", err)
	}

	return status, nil
}

// AggregateReactions tallies likes, dislikes and boosts for a post
func (r *postRepository) AggregateReactions(ctx context.Context, postID uuid.UUID) (*domain.AggregateReactions, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM reactions WHERE post_id = $1 AND like_status > 0) AS likes,
			(SELECT COUNT(*) FROM reactions WHERE post_id = $1 AND like_status < 0) AS dislikes,
			(SELECT COUNT(*) FROM boosts WHERE post_id = $1) AS boosts`

	var agg domain.AggregateReactions
	err := r.db.GetContext(ctx, &agg, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reactions: %w", err)
	}

	return &agg, nil
}
