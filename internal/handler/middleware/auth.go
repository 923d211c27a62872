package middleware

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/uchat-app/uchat/internal/repository"
	"github.com/uchat-app/uchat/pkg/sign"
)

// Cookie names shared by session issuance and the extractor. Both cookies
// must travel together; a request missing either is unauthenticated.
const (
	SessionIDCookie        = "SESSION_ID"
	SessionSignatureCookie = "SESSION_SIGNATURE"
)

// unauthorized is the single outward response for every failed branch of the
// session check. A probing client must not be able to tell a missing cookie
// from a bad signature from an expired session; only the logs keep the
// distinction.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

// SessionAuth verifies the SESSION_ID / SESSION_SIGNATURE cookie pair before
// every authorized handler: parse the session id, check its ed25519
// signature against the process keypair, load the session row and apply the
// expiry filter. On success the user and session ids are stored in Locals
// for downstream handlers. Signature verification is pure computation; the
// session lookup is the only I/O on this path.
func SessionAuth(signingKeys *sign.Keypair, sessionRepo repository.SessionRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawID := c.Cookies(SessionIDCookie)
		if rawID == "" {
			log.Printf("[SESSION_AUTH] Missing %s cookie", SessionIDCookie)
			return unauthorized(c)
		}

		sessionID, err := uuid.Parse(rawID)
		if err != nil {
			log.Printf("[SESSION_AUTH] Malformed session id")
			return unauthorized(c)
		}

		rawSignature := c.Cookies(SessionSignatureCookie)
		if rawSignature == "" {
			log.Printf("[SESSION_AUTH] Missing %s cookie", SessionSignatureCookie)
			return unauthorized(c)
		}

		signature, err := sign.DecodeSignature(rawSignature)
		if err != nil {
			log.Printf("[SESSION_AUTH] Malformed session signature")
			return unauthorized(c)
		}

		if err := signingKeys.Verify(sessionID[:], signature); err != nil {
			log.Printf("[SESSION_AUTH] Signature verification failed for session %s", sessionID)
			return unauthorized(c)
		}

		session, err := sessionRepo.GetByID(c.Context(), sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("[SESSION_AUTH] Session %s not found", sessionID)
				return unauthorized(c)
			}
			// Storage trouble is the one branch that is not a 401: the
			// credentials were never evaluated.
			log.Printf("[SESSION_AUTH] Session lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		if session.Expired(time.Now()) {
			log.Printf("[SESSION_AUTH] Session %s expired at %s", session.ID, session.ExpiresAt)
			return unauthorized(c)
		}

		c.Locals("user_id", session.UserID)
		c.Locals("session_id", session.ID)

		return c.Next()
	}
}
