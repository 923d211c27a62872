package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
	"github.com/uchat-app/uchat/pkg/cache"
)

var ErrPostNotFound = errors.New("post not found")

type BookmarkAction string

const (
	BookmarkActionAdd    BookmarkAction = "add"
	BookmarkActionRemove BookmarkAction = "remove"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	trending  *cache.TrendingCache
	feedLimit int
}

type CreatePostRequest struct {
	Headline *string    `json:"headline" validate:"omitempty,max=100"`
	Message  string     `json:"message" validate:"required,min=1,max=500"`
	ReplyTo  *uuid.UUID `json:"reply_to"`
}

type ReactRequest struct {
	LikeStatus domain.LikeStatus `json:"like_status" validate:"required,oneof=like dislike no_reaction"`
}

// NewPostService creates the post service. trending may be nil, in which
// case the trending feed is rebuilt from the database on every request.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	trending *cache.TrendingCache,
	feedLimit int,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		trending:  trending,
		feedLimit: feedLimit,
	}
}

// Create stores a new post. A reply must point at an existing post.
func (s *PostService) Create(ctx context.Context, userID uuid.UUID, req CreatePostRequest) (*domain.Post, error) {
	if req.ReplyTo != nil {
		if _, err := s.postRepo.GetByID(ctx, *req.ReplyTo); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPostNotFound
			}
			return nil, err
		}
	}

	now := time.Now()
	post := &domain.Post{
		ID:         uuid.New(),
		UserID:     userID,
		Headline:   req.Headline,
		Message:    req.Message,
		ReplyTo:    req.ReplyTo,
		TimePosted: now,
		CreatedAt:  now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Trending returns the most recent public posts rendered for viewerID. The
// viewer-neutral portion is served from the Redis cache when fresh; the
// viewer-specific flags are always computed per request.
func (s *PostService) Trending(ctx context.Context, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	if s.trending != nil {
		if posts, ok := s.trending.Get(ctx); ok {
			return s.decorateForViewer(ctx, posts, viewerID)
		}
	}

	posts, err := s.postRepo.GetTrending(ctx, s.feedLimit)
	if err != nil {
		return nil, err
	}

	neutral, err := s.toPublicAll(ctx, posts, uuid.Nil)
	if err != nil {
		return nil, err
	}

	if s.trending != nil {
		if err := s.trending.Set(ctx, neutral); err != nil {
			// A cold cache only costs latency; the feed itself is fine.
			log.Printf("[POST_SERVICE] Failed to cache trending feed: %v", err)
		}
	}

	return s.decorateForViewer(ctx, neutral, viewerID)
}

// Home returns posts by the viewer and everyone the viewer follows.
func (s *PostService) Home(ctx context.Context, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	posts, err := s.postRepo.GetHome(ctx, viewerID, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return s.toPublicAll(ctx, posts, viewerID)
}

// Liked returns posts the viewer has liked.
func (s *PostService) Liked(ctx context.Context, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	posts, err := s.postRepo.GetLiked(ctx, viewerID, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return s.toPublicAll(ctx, posts, viewerID)
}

// Bookmarked returns posts the viewer has bookmarked.
func (s *PostService) Bookmarked(ctx context.Context, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	posts, err := s.postRepo.GetBookmarked(ctx, viewerID, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return s.toPublicAll(ctx, posts, viewerID)
}

// PostsByUser returns a user's public posts rendered for viewerID.
func (s *PostService) PostsByUser(ctx context.Context, viewerID, userID uuid.UUID) ([]domain.PublicPost, error) {
	posts, err := s.postRepo.GetByUser(ctx, userID, s.feedLimit)
	if err != nil {
		return nil, err
	}
	return s.toPublicAll(ctx, posts, viewerID)
}

// Bookmark adds or removes the viewer's bookmark on the post.
func (s *PostService) Bookmark(ctx context.Context, userID, postID uuid.UUID, action BookmarkAction) error {
	if err := s.ensurePostExists(ctx, postID); err != nil {
		return err
	}

	switch action {
	case BookmarkActionRemove:
		return s.postRepo.DeleteBookmark(ctx, userID, postID)
	default:
		return s.postRepo.Bookmark(ctx, userID, postID)
	}
}

// Boost adds or removes the viewer's boost on the post. Boosting a post that
// is already boosted refreshes its boost time.
func (s *PostService) Boost(ctx context.Context, userID, postID uuid.UUID, action BookmarkAction) error {
	if err := s.ensurePostExists(ctx, postID); err != nil {
		return err
	}

	switch action {
	case BookmarkActionRemove:
		return s.postRepo.DeleteBoost(ctx, userID, postID)
	default:
		return s.postRepo.Boost(ctx, userID, postID)
	}
}

// React sets the viewer's like status on the post and returns the updated
// aggregate counts.
func (s *PostService) React(ctx context.Context, userID, postID uuid.UUID, status domain.LikeStatus) (*domain.AggregateReactions, error) {
	if err := s.ensurePostExists(ctx, postID); err != nil {
		return nil, err
	}

	reaction := &domain.Reaction{
		UserID:     userID,
		PostID:     postID,
		LikeStatus: status.Value(),
		CreatedAt:  time.Now(),
	}

	if err := s.postRepo.React(ctx, reaction); err != nil {
		return nil, err
	}

	return s.postRepo.AggregateReactions(ctx, postID)
}

func (s *PostService) ensurePostExists(ctx context.Context, postID uuid.UUID) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// toPublic renders one post for a viewer. viewerID == uuid.Nil produces the
// viewer-neutral form used for caching.
func (s *PostService) toPublic(ctx context.Context, post *domain.Post, viewerID uuid.UUID) (*domain.PublicPost, error) {
	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}

	agg, err := s.postRepo.AggregateReactions(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	public := &domain.PublicPost{
		ID: post.ID,
		ByUser: domain.PublicUserProfile{
			ID:           author.ID,
			Handle:       author.Handle,
			DisplayName:  author.DisplayName,
			ProfileImage: author.ProfileImage,
			CreatedAt:    author.CreatedAt,
		},
		Headline:   post.Headline,
		Message:    post.Message,
		TimePosted: post.TimePosted,
		LikeStatus: domain.LikeStatusNoReaction,
		Likes:      agg.Likes,
		Dislikes:   agg.Dislikes,
		Boosts:     agg.Boosts,
	}

	if post.ReplyTo != nil {
		if original, err := s.postRepo.GetByID(ctx, *post.ReplyTo); err == nil {
			if originalAuthor, err := s.userRepo.GetByID(ctx, original.UserID); err == nil {
				public.ReplyTo = &domain.ReplyRef{
					Handle: originalAuthor.Handle,
					UserID: originalAuthor.ID,
					PostID: original.ID,
				}
			}
		}
	}

	if viewerID != uuid.Nil {
		if err := s.decorate(ctx, public, viewerID); err != nil {
			return nil, err
		}
	}

	return public, nil
}

func (s *PostService) toPublicAll(ctx context.Context, posts []*domain.Post, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	public := make([]domain.PublicPost, 0, len(posts))
	for _, post := range posts {
		p, err := s.toPublic(ctx, post, viewerID)
		if err != nil {
			// One bad post must not take down the whole feed.
			log.Printf("[POST_SERVICE] Skipping post %s: %v", post.ID, err)
			continue
		}
		public = append(public, *p)
	}
	return public, nil
}

// decorate fills the viewer-specific fields of an already rendered post.
func (s *PostService) decorate(ctx context.Context, post *domain.PublicPost, viewerID uuid.UUID) error {
	status, err := s.postRepo.GetReaction(ctx, viewerID, post.ID)
	if err != nil {
		return err
	}
	post.LikeStatus = domain.LikeStatusFromValue(status)

	if post.Bookmarked, err = s.postRepo.IsBookmarked(ctx, viewerID, post.ID); err != nil {
		return err
	}
	if post.Boosted, err = s.postRepo.IsBoosted(ctx, viewerID, post.ID); err != nil {
		return err
	}

	if viewerID != post.ByUser.ID {
		if post.ByUser.AmFollowing, err = s.userRepo.IsFollowing(ctx, viewerID, post.ByUser.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostService) decorateForViewer(ctx context.Context, posts []domain.PublicPost, viewerID uuid.UUID) ([]domain.PublicPost, error) {
	if viewerID == uuid.Nil {
		return posts, nil
	}
	for i := range posts {
		if err := s.decorate(ctx, &posts[i], viewerID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}
