package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository/memory"
)

type postFixture struct {
	posts *PostService
	users *memory.UserRepository
}

func newPostFixture() *postFixture {
	users := memory.NewUserRepository()
	return &postFixture{
		posts: NewPostService(memory.NewPostRepository(users), users, nil, 30),
		users: users,
	}
}

func (f *postFixture) addUser(t *testing.T, handle string) uuid.UUID {
	t.Helper()
	user := &domain.User{ID: uuid.New(), Handle: handle, CreatedAt: time.Now()}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func TestCreateAndReply(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	post, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "first post"})
	require.NoError(t, err)

	reply, err := f.posts.Create(ctx, alice, CreatePostRequest{
		Message: "a reply",
		ReplyTo: &post.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, post.ID, *reply.ReplyTo)

	// Replying to a post that does not exist fails.
	ghost := uuid.New()
	_, err = f.posts.Create(ctx, alice, CreatePostRequest{
		Message: "into the void",
		ReplyTo: &ghost,
	})
	assert.ErrorIs(t, err, ErrPostNotFound)

	// The rendered reply references the original post and its author.
	rendered, err := f.posts.PostsByUser(ctx, alice, alice)
	require.NoError(t, err)
	require.Len(t, rendered, 2)
	require.NotNil(t, rendered[0].ReplyTo)
	assert.Equal(t, "alice", rendered[0].ReplyTo.Handle)
	assert.Equal(t, post.ID, rendered[0].ReplyTo.PostID)
}

func TestReactReplacesPreviousReaction(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "first post"})
	require.NoError(t, err)

	agg, err := f.posts.React(ctx, bob, post.ID, domain.LikeStatusLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.Likes)
	assert.Equal(t, int64(0), agg.Dislikes)

	// Switching sides replaces the row instead of adding a second one.
	agg, err = f.posts.React(ctx, bob, post.ID, domain.LikeStatusDislike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Likes)
	assert.Equal(t, int64(1), agg.Dislikes)

	agg, err = f.posts.React(ctx, bob, post.ID, domain.LikeStatusNoReaction)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Likes)
	assert.Equal(t, int64(0), agg.Dislikes)

	_, err = f.posts.React(ctx, bob, uuid.New(), domain.LikeStatusLike)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestBookmarkAndBoostToggles(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "first post"})
	require.NoError(t, err)

	require.NoError(t, f.posts.Bookmark(ctx, bob, post.ID, BookmarkActionAdd))
	require.NoError(t, f.posts.Boost(ctx, bob, post.ID, BookmarkActionAdd))

	feed, err := f.posts.Bookmarked(ctx, bob)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Bookmarked)
	assert.True(t, feed[0].Boosted)
	assert.Equal(t, int64(1), feed[0].Boosts)

	require.NoError(t, f.posts.Bookmark(ctx, bob, post.ID, BookmarkActionRemove))
	require.NoError(t, f.posts.Boost(ctx, bob, post.ID, BookmarkActionRemove))

	feed, err = f.posts.Bookmarked(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, feed)

	assert.ErrorIs(t, f.posts.Bookmark(ctx, bob, uuid.New(), BookmarkActionAdd), ErrPostNotFound)
}

func TestHomeFeedScope(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	_, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "from alice"})
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, bob, CreatePostRequest{Message: "from bob"})
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, carol, CreatePostRequest{Message: "from carol"})
	require.NoError(t, err)

	require.NoError(t, f.users.Follow(ctx, bob, alice))

	// Bob's home feed: his own posts plus alice's, never carol's.
	feed, err := f.posts.Home(ctx, bob)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	messages := []string{feed[0].Message, feed[1].Message}
	assert.Contains(t, messages, "from alice")
	assert.Contains(t, messages, "from bob")
}

func TestTrendingNewestFirst(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	first, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "older"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := f.posts.Create(ctx, alice, CreatePostRequest{Message: "newer"})
	require.NoError(t, err)

	feed, err := f.posts.Trending(ctx, alice)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}
