package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchat-app/uchat/internal/config"
	"github.com/uchat-app/uchat/internal/handler/middleware"
	"github.com/uchat-app/uchat/internal/repository/memory"
	"github.com/uchat-app/uchat/internal/service"
	"github.com/uchat-app/uchat/pkg/sign"
	"github.com/uchat-app/uchat/pkg/validator"
)

type testAPI struct {
	app      *fiber.App
	sessions *memory.SessionRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	_, keys, err := sign.Generate()
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionDuration: 21 * 24 * time.Hour,
			FeedLimit:       30,
		},
	}

	userRepo := memory.NewUserRepository()
	sessionRepo := memory.NewSessionRepository()
	postRepo := memory.NewPostRepository(userRepo)

	authService := service.NewAuthService(userRepo, sessionRepo, keys, cfg)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, userRepo, nil, cfg.Auth.FeedLimit)

	validate := validator.NewValidator()
	app := fiber.New()

	SetupRoutes(
		app,
		NewAuthHandler(authService, validate),
		NewUserHandler(userService, postService, validate),
		NewPostHandler(postService, validate),
		NewHealthHandler(nil),
		middleware.SessionAuth(keys, sessionRepo),
	)

	return &testAPI{app: app, sessions: sessionRepo}
}

type client struct {
	t       *testing.T
	api     *testAPI
	cookies []*http.Cookie
}

func (c *client) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.api.app.Test(req)
	require.NoError(c.t, err)
	return resp
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	require.NoError(t, resp.Body.Close())
}

// signup registers a user and keeps the session cookie pair for later calls.
func (c *client) signup(username, password string) map[string]any {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	c.cookies = resp.Cookies()

	var body map[string]any
	decode(c.t, resp, &body)
	return body
}

func TestRegisterLoginAndMe(t *testing.T) {
	api := newTestAPI(t)
	alice := &client{t: t, api: api}

	body := alice.signup("alice", "correct-horse-battery")
	assert.Equal(t, "alice", body["username"])

	require.Len(t, alice.cookies, 2)
	names := []string{alice.cookies[0].Name, alice.cookies[1].Name}
	assert.Contains(t, names, middleware.SessionIDCookie)
	assert.Contains(t, names, middleware.SessionSignatureCookie)

	resp := alice.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	decode(t, resp, &me)
	assert.Equal(t, "alice", me["handle"])
	assert.NotContains(t, me, "password_hash")

	// Wrong password and unknown handle get the same generic answer.
	bad := alice.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	unknown := alice.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "nobody", "password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
}

func TestTamperedSignatureRejected(t *testing.T) {
	api := newTestAPI(t)
	alice := &client{t: t, api: api}
	alice.signup("alice", "correct-horse-battery")

	for _, cookie := range alice.cookies {
		if cookie.Name == middleware.SessionSignatureCookie {
			// Flip the first character of the encoded signature.
			flipped := "A"
			if cookie.Value[0] == 'A' {
				flipped = "B"
			}
			cookie.Value = flipped + cookie.Value[1:]
		}
	}

	resp := alice.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredSessionRejected(t *testing.T) {
	api := newTestAPI(t)
	alice := &client{t: t, api: api}
	body := alice.signup("alice", "correct-horse-battery")

	sessionID := body["session_id"].(string)
	api.sessions.ExpireNow(mustUUID(t, sessionID))

	resp := alice.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	api := newTestAPI(t)
	alice := &client{t: t, api: api}
	alice.signup("alice", "correct-horse-battery")

	resp := alice.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The old cookie pair no longer opens any door.
	resp = alice.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostsFollowsAndFeeds(t *testing.T) {
	api := newTestAPI(t)

	alice := &client{t: t, api: api}
	aliceBody := alice.signup("alice", "correct-horse-battery")
	aliceID := aliceBody["user_id"].(string)

	bob := &client{t: t, api: api}
	bob.signup("bob", "hunter2-hunter2")

	// Alice posts.
	resp := alice.do(http.MethodPost, "/api/v1/posts", map[string]any{
		"headline": "hello",
		"message":  "first post",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	decode(t, resp, &created)
	postID := created["post_id"].(string)

	// Bob follows alice; her post shows up in his home feed.
	resp = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%s/follow", aliceID), map[string]string{
		"action": "follow",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = bob.do(http.MethodGet, "/api/v1/posts/home", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var home map[string][]map[string]any
	decode(t, resp, &home)
	require.Len(t, home["posts"], 1)
	assert.Equal(t, "first post", home["posts"][0]["message"])
	byUser := home["posts"][0]["by_user"].(map[string]any)
	assert.Equal(t, true, byUser["am_following"])

	// Bob likes and bookmarks the post.
	resp = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%s/react", postID), map[string]string{
		"like_status": "like",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reacted map[string]any
	decode(t, resp, &reacted)
	assert.Equal(t, "like", reacted["like_status"])
	assert.Equal(t, float64(1), reacted["likes"])

	resp = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%s/bookmark", postID), map[string]string{
		"action": "add",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = bob.do(http.MethodGet, "/api/v1/posts/bookmarked", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bookmarked map[string][]map[string]any
	decode(t, resp, &bookmarked)
	require.Len(t, bookmarked["posts"], 1)

	// Trending is viewer-decorated: bob sees his own like on it.
	resp = bob.do(http.MethodGet, "/api/v1/posts/trending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trending map[string][]map[string]any
	decode(t, resp, &trending)
	require.Len(t, trending["posts"], 1)
	assert.Equal(t, "like", trending["posts"][0]["like_status"])

	// Self-follow is rejected.
	resp = alice.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%s/follow", aliceID), map[string]string{
		"action": "follow",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
