package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Headline   *string    `json:"headline,omitempty" db:"headline"`
	Message    string     `json:"message" db:"message"`
	ReplyTo    *uuid.UUID `json:"reply_to,omitempty" db:"reply_to"`
	TimePosted time.Time  `json:"time_posted" db:"time_posted"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type LikeStatus string

const (
	LikeStatusLike       LikeStatus = "like"
	LikeStatusDislike    LikeStatus = "dislike"
	LikeStatusNoReaction LikeStatus = "no_reaction"
)

// Value maps the wire form to the smallint stored in reactions.like_status.
func (s LikeStatus) Value() int16 {
	switch s {
	case LikeStatusLike:
		return 1
	case LikeStatusDislike:
		return -1
	default:
		return 0
	}
}

// LikeStatusFromValue is the inverse of LikeStatus.Value.
func LikeStatusFromValue(v int16) LikeStatus {
	switch {
	case v > 0:
		return LikeStatusLike
	case v < 0:
		return LikeStatusDislike
	default:
		return LikeStatusNoReaction
	}
}

type Reaction struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	PostID     uuid.UUID `json:"post_id" db:"post_id"`
	LikeStatus int16     `json:"like_status" db:"like_status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AggregateReactions is the per-post tally of likes, dislikes and boosts.
type AggregateReactions struct {
	Likes    int64 `json:"likes" db:"likes"`
	Dislikes int64 `json:"dislikes" db:"dislikes"`
	Boosts   int64 `json:"boosts" db:"boosts"`
}

// ReplyRef points at the post being replied to and its author.
type ReplyRef struct {
	Handle string    `json:"handle"`
	UserID uuid.UUID `json:"user_id"`
	PostID uuid.UUID `json:"post_id"`
}

// PublicPost is a post as rendered for a particular viewer: the post itself,
// its author's public profile and the viewer's own interaction state.
type PublicPost struct {
	ID         uuid.UUID         `json:"id"`
	ByUser     PublicUserProfile `json:"by_user"`
	Headline   *string           `json:"headline,omitempty"`
	Message    string            `json:"message"`
	TimePosted time.Time         `json:"time_posted"`
	ReplyTo    *ReplyRef         `json:"reply_to,omitempty"`
	LikeStatus LikeStatus        `json:"like_status"`
	Bookmarked bool              `json:"bookmarked"`
	Boosted    bool              `json:"boosted"`
	Likes      int64             `json:"likes"`
	Dislikes   int64             `json:"dislikes"`
	Boosts     int64             `json:"boosts"`
}
