package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchat-app/uchat/internal/config"
	"github.com/uchat-app/uchat/internal/repository/memory"
	"github.com/uchat-app/uchat/pkg/sign"
)

func newTestAuthService(t *testing.T) (*AuthService, *memory.SessionRepository) {
	t.Helper()

	_, keys, err := sign.Generate()
	require.NoError(t, err)

	sessions := memory.NewSessionRepository()
	cfg := &config.Config{
		Auth: config.AuthConfig{SessionDuration: 21 * 24 * time.Hour},
	}

	return NewAuthService(memory.NewUserRepository(), sessions, keys, cfg), sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Password: "correct-horse-battery",
	}, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEqual(t, resp.SessionID.String(), "00000000-0000-0000-0000-000000000000")
	assert.NotEmpty(t, resp.SessionSignature)
	assert.True(t, resp.SessionExpires.After(time.Now()))

	login, err := svc.Login(ctx, LoginRequest{
		Username: "alice",
		Password: "correct-horse-battery",
	}, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, login.UserID)
}

func TestRegisterDuplicateHandle(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "correct-horse-battery"}, "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Password: "another-password"}, "")
	assert.ErrorIs(t, err, ErrHandleTaken)
}

// Both an unknown handle and a wrong password must surface as the same error
// so a response cannot be used to probe which usernames exist.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "correct-horse-battery"}, "")
	require.NoError(t, err)

	_, unknownHandle := svc.Login(ctx, LoginRequest{Username: "bob", Password: "correct-horse-battery"}, "")
	_, wrongPassword := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong-password"}, "")

	assert.ErrorIs(t, unknownHandle, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
}

// A repeat login from the same client must reuse the existing session row
// (same id, later expiry) instead of piling up rows; a different fingerprint
// gets its own session.
func TestIssueSessionUpsert(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "correct-horse-battery"}, "fp-1")
	require.NoError(t, err)

	first, firstSig, _, err := svc.IssueSession(ctx, resp.UserID, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, first.ID)

	second, secondSig, _, err := svc.IssueSession(ctx, resp.UserID, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, firstSig, secondSig, "signature over the same id is deterministic")
	assert.False(t, second.ExpiresAt.Before(first.ExpiresAt))

	other, _, _, err := svc.IssueSession(ctx, resp.UserID, "fp-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

// The signature handed to the client must verify against the session id
// actually stored, even when the upsert discarded the candidate id.
func TestIssueSessionSignsStoredID(t *testing.T) {
	_, keys, err := sign.Generate()
	require.NoError(t, err)

	sessions := memory.NewSessionRepository()
	cfg := &config.Config{Auth: config.AuthConfig{SessionDuration: time.Hour}}
	svc := NewAuthService(memory.NewUserRepository(), sessions, keys, cfg)
	ctx := context.Background()

	userID := mustRegister(t, svc, ctx)

	first, _, _, err := svc.IssueSession(ctx, userID, "fp-1")
	require.NoError(t, err)

	// Conflicting upsert: the candidate id generated inside IssueSession is
	// discarded in favor of first.ID.
	second, encodedSig, _, err := svc.IssueSession(ctx, userID, "fp-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	signature, err := sign.DecodeSignature(encodedSig)
	require.NoError(t, err)
	id := second.ID
	assert.NoError(t, keys.Verify(id[:], signature))
}

func TestLogoutTwice(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "correct-horse-battery"}, "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.SessionID))
	assert.NoError(t, svc.Logout(ctx, resp.SessionID), "logging out a gone session is not an error")
}

func mustRegister(t *testing.T, svc *AuthService, ctx context.Context) uuid.UUID {
	t.Helper()
	resp, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "correct-horse-battery"}, "fp-0")
	require.NoError(t, err)
	return resp.UserID
}
