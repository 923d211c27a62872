package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
	"github.com/uchat-app/uchat/internal/repository/memory"
	"github.com/uchat-app/uchat/pkg/sign"
)

func newProtectedApp(t *testing.T, keys *sign.Keypair, sessions repository.SessionRepository) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Get("/protected", SessionAuth(keys, sessions), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uuid.UUID)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func issueSession(t *testing.T, keys *sign.Keypair, sessions *memory.SessionRepository, userID uuid.UUID) (uuid.UUID, string) {
	t.Helper()

	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	stored, err := sessions.Upsert(context.Background(), session)
	require.NoError(t, err)

	id := stored.ID
	return stored.ID, sign.EncodeSignature(keys.Sign(id[:]))
}

func request(cookies map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func TestSessionAuthAccepted(t *testing.T) {
	_, keys, err := sign.Generate()
	require.NoError(t, err)
	sessions := memory.NewSessionRepository()
	app := newProtectedApp(t, keys, sessions)

	sessionID, signature := issueSession(t, keys, sessions, uuid.New())

	resp, err := app.Test(request(map[string]string{
		SessionIDCookie:        sessionID.String(),
		SessionSignatureCookie: signature,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Every failure mode of the cookie check must come back as the same 401 so
// the response reveals nothing about which check tripped.
func TestSessionAuthRejections(t *testing.T) {
	_, keys, err := sign.Generate()
	require.NoError(t, err)
	sessions := memory.NewSessionRepository()
	app := newProtectedApp(t, keys, sessions)

	sessionID, signature := issueSession(t, keys, sessions, uuid.New())

	_, otherKeys, err := sign.Generate()
	require.NoError(t, err)
	strangerID := sessionID
	foreignSignature := sign.EncodeSignature(otherKeys.Sign(strangerID[:]))

	// Signature that verifies but points at no stored session.
	ghostID := uuid.New()
	ghostSignature := sign.EncodeSignature(keys.Sign(ghostID[:]))

	cases := []struct {
		name    string
		cookies map[string]string
	}{
		{"no cookies", nil},
		{"missing signature", map[string]string{
			SessionIDCookie: sessionID.String(),
		}},
		{"missing session id", map[string]string{
			SessionSignatureCookie: signature,
		}},
		{"malformed session id", map[string]string{
			SessionIDCookie:        "not-a-uuid",
			SessionSignatureCookie: signature,
		}},
		{"signature not base64", map[string]string{
			SessionIDCookie:        sessionID.String(),
			SessionSignatureCookie: "%%%not-base64%%%",
		}},
		{"signature from another key", map[string]string{
			SessionIDCookie:        sessionID.String(),
			SessionSignatureCookie: foreignSignature,
		}},
		{"unknown session", map[string]string{
			SessionIDCookie:        ghostID.String(),
			SessionSignatureCookie: ghostSignature,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(request(tc.cookies))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSessionAuthExpired(t *testing.T) {
	_, keys, err := sign.Generate()
	require.NoError(t, err)
	sessions := memory.NewSessionRepository()
	app := newProtectedApp(t, keys, sessions)

	sessionID, signature := issueSession(t, keys, sessions, uuid.New())
	sessions.ExpireNow(sessionID)

	resp, err := app.Test(request(map[string]string{
		SessionIDCookie:        sessionID.String(),
		SessionSignatureCookie: signature,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// failingSessionRepo simulates storage trouble on lookup.
type failingSessionRepo struct{}

func (failingSessionRepo) Upsert(context.Context, *domain.Session) (*domain.Session, error) {
	return nil, errors.New("down")
}

func (failingSessionRepo) GetByID(context.Context, uuid.UUID) (*domain.Session, error) {
	return nil, errors.New("connection refused")
}

func (failingSessionRepo) Delete(context.Context, uuid.UUID) error { return errors.New("down") }
func (failingSessionRepo) DeleteExpired(context.Context) error     { return errors.New("down") }

// A storage failure is not a credential failure: it must surface as a 500,
// not fold into the generic 401.
func TestSessionAuthStorageError(t *testing.T) {
	_, keys, err := sign.Generate()
	require.NoError(t, err)
	app := newProtectedApp(t, keys, failingSessionRepo{})

	sessionID := uuid.New()
	signature := sign.EncodeSignature(keys.Sign(sessionID[:]))

	resp, err := app.Test(request(map[string]string{
		SessionIDCookie:        sessionID.String(),
		SessionSignatureCookie: signature,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
