// Package memory provides in-memory repository implementations with the same
// semantics as the postgres package, including the session upsert keyed on
// (user_id, fingerprint). Used as test fixtures and for running the API
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	// follows maps follower id to the set of followed ids.
	follows map[uuid.UUID]map[uuid.UUID]bool
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uuid.UUID]domain.User),
		follows: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Handle == user.Handle {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByHandle(_ context.Context, handle string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Handle == handle {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Follow(_ context.Context, userID, followsID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.follows[userID] == nil {
		r.follows[userID] = make(map[uuid.UUID]bool)
	}
	r.follows[userID][followsID] = true
	return nil
}

func (r *UserRepository) Unfollow(_ context.Context, userID, followsID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.follows[userID], followsID)
	return nil
}

func (r *UserRepository) IsFollowing(_ context.Context, userID, followsID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.follows[userID][followsID], nil
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]domain.Session)}
}

func (r *SessionRepository) Upsert(_ context.Context, session *domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Same (user_id, fingerprint): keep the existing row, advance its expiry.
	for id, existing := range r.sessions {
		if existing.UserID == session.UserID && existing.Fingerprint == session.Fingerprint {
			existing.ExpiresAt = session.ExpiresAt
			r.sessions[id] = existing
			return &existing, nil
		}
	}

	r.sessions[session.ID] = *session
	stored := *session
	return &stored, nil
}

func (r *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(now) {
			delete(r.sessions, id)
		}
	}
	return nil
}

// ExpireNow rewinds a session's expiry into the past. Test helper.
func (r *SessionRepository) ExpireNow(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.ExpiresAt = time.Now().Add(-time.Minute)
		r.sessions[id] = session
	}
}

type bookmarkKey struct {
	userID uuid.UUID
	postID uuid.UUID
}

type PostRepository struct {
	mu        sync.RWMutex
	posts     map[uuid.UUID]domain.Post
	bookmarks map[bookmarkKey]time.Time
	boosts    map[bookmarkKey]time.Time
	reactions map[bookmarkKey]domain.Reaction
	users     *UserRepository
}

// NewPostRepository creates an in-memory post repository. The user repository
// supplies follow edges for the home feed.
func NewPostRepository(users *UserRepository) *PostRepository {
	return &PostRepository{
		posts:     make(map[uuid.UUID]domain.Post),
		bookmarks: make(map[bookmarkKey]time.Time),
		boosts:    make(map[bookmarkKey]time.Time),
		reactions: make(map[bookmarkKey]domain.Reaction),
		users:     users,
	}
}

func (r *PostRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.ID] = *post
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &post, nil
}

func (r *PostRepository) GetTrending(_ context.Context, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(domain.Post) bool { return true }), nil
}

func (r *PostRepository) GetHome(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(p domain.Post) bool {
		if p.UserID == userID {
			return true
		}
		following, _ := r.users.IsFollowing(ctx, userID, p.UserID)
		return following
	}), nil
}

func (r *PostRepository) GetByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(p domain.Post) bool { return p.UserID == userID }), nil
}

func (r *PostRepository) GetLiked(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(p domain.Post) bool {
		reaction, ok := r.reactions[bookmarkKey{userID, p.ID}]
		return ok && reaction.LikeStatus > 0
	}), nil
}

func (r *PostRepository) GetBookmarked(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(p domain.Post) bool {
		_, ok := r.bookmarks[bookmarkKey{userID, p.ID}]
		return ok
	}), nil
}

// collect filters posts and returns them newest first. Callers hold the lock.
func (r *PostRepository) collect(limit int, keep func(domain.Post) bool) []*domain.Post {
	now := time.Now()
	var posts []*domain.Post
	for _, post := range r.posts {
		if post.TimePosted.After(now) || !keep(post) {
			continue
		}
		p := post
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].TimePosted.After(posts[j].TimePosted)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (r *PostRepository) Bookmark(_ context.Context, userID, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookmarkKey{userID, postID}
	if _, ok := r.bookmarks[key]; !ok {
		r.bookmarks[key] = time.Now()
	}
	return nil
}

func (r *PostRepository) DeleteBookmark(_ context.Context, userID, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.bookmarks, bookmarkKey{userID, postID})
	return nil
}

func (r *PostRepository) IsBookmarked(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bookmarks[bookmarkKey{userID, postID}]
	return ok, nil
}

func (r *PostRepository) Boost(_ context.Context, userID, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.boosts[bookmarkKey{userID, postID}] = time.Now()
	return nil
}

func (r *PostRepository) DeleteBoost(_ context.Context, userID, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.boosts, bookmarkKey{userID, postID})
	return nil
}

func (r *PostRepository) IsBoosted(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.boosts[bookmarkKey{userID, postID}]
	return ok, nil
}

func (r *PostRepository) React(_ context.Context, reaction *domain.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reactions[bookmarkKey{reaction.UserID, reaction.PostID}] = *reaction
	return nil
}

func (r *PostRepository) GetReaction(_ context.Context, userID, postID uuid.UUID) (int16, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reaction, ok := r.reactions[bookmarkKey{userID, postID}]
	if !ok {
		return 0, nil
	}
	return reaction.LikeStatus, nil
}

func (r *PostRepository) AggregateReactions(_ context.Context, postID uuid.UUID) (*domain.AggregateReactions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var agg domain.AggregateReactions
	for key, reaction := range r.reactions {
		if key.postID != postID {
			continue
		}
		switch {
		case reaction.LikeStatus > 0:
			agg.Likes++
		case reaction.LikeStatus < 0:
			agg.Dislikes++
		}
	}
	for key := range r.boosts {
		if key.postID == postID {
			agg.Boosts++
		}
	}
	return &agg, nil
}
