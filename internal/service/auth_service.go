package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/config"
	"github.com/uchat-app/uchat/internal/domain"
	"github.com/uchat-app/uchat/internal/repository"
	"github.com/uchat-app/uchat/pkg/hash"
	"github.com/uchat-app/uchat/pkg/sign"
)

// Custom errors
var (
	// ErrInvalidCredentials covers unknown handle, unparseable stored hash
	// and wrong password alike, so a login response never reveals whether a
	// username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrHandleTaken        = errors.New("username already taken")
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	signingKeys *sign.Keypair
	cfg         *config.Config
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries everything login/registration handlers need to set
// the SESSION_ID / SESSION_SIGNATURE cookie pair and fill the response body.
type AuthResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	DisplayName      *string   `json:"display_name,omitempty"`
	SessionID        uuid.UUID `json:"session_id"`
	SessionSignature string    `json:"session_signature"`
	SessionExpires   time.Time `json:"session_expires"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	signingKeys *sign.Keypair,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		signingKeys: signingKeys,
		cfg:         cfg,
	}
}

// Register creates a user with a freshly salted argon2id hash and issues the
// first session for the new account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, fingerprint string) (*AuthResponse, error) {
	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Handle:       req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrHandleTaken
		}
		return nil, err
	}

	log.Printf("[AUTH_SERVICE] New user registered: %s", user.Handle)

	return s.authResponse(ctx, user, fingerprint)
}

// Login verifies the credentials and issues a session. Every failure mode of
// the credential check collapses to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, fingerprint string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByHandle(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[AUTH_SERVICE] Login failed: unknown handle")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := hash.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		log.Printf("[AUTH_SERVICE] Login failed: password verification for user %s", user.ID)
		return nil, ErrInvalidCredentials
	}

	log.Printf("[AUTH_SERVICE] Login successful: %s", user.Handle)

	return s.authResponse(ctx, user, fingerprint)
}

// Logout ends the given session. A session that is already gone is fine.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// IssueSession upserts a session row keyed on (user_id, fingerprint) and
// signs the resulting session id with the process keypair. A repeat login
// from the same client reuses the existing row and only advances its expiry.
func (s *AuthService) IssueSession(ctx context.Context, userID uuid.UUID, fingerprint string) (*domain.Session, string, time.Duration, error) {
	duration := s.cfg.Auth.SessionDuration
	now := time.Now()

	session := &domain.Session{
		ID:          uuid.New(),
		UserID:      userID,
		Fingerprint: fingerprint,
		ExpiresAt:   now.Add(duration),
		CreatedAt:   now,
	}

	stored, err := s.sessionRepo.Upsert(ctx, session)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to store session: %w", err)
	}

	// Sign the stored id, not the candidate one: on a fingerprint conflict
	// the upsert keeps the original row's id.
	id := stored.ID
	signature := s.signingKeys.Sign(id[:])

	return stored, sign.EncodeSignature(signature), duration, nil
}

func (s *AuthService) authResponse(ctx context.Context, user *domain.User, fingerprint string) (*AuthResponse, error) {
	session, signature, _, err := s.IssueSession(ctx, user.ID, fingerprint)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		UserID:           user.ID,
		Username:         user.Handle,
		DisplayName:      user.DisplayName,
		SessionID:        session.ID,
		SessionSignature: signature,
		SessionExpires:   session.ExpiresAt,
	}, nil
}
