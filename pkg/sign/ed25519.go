// Package sign wraps the process-wide ed25519 keypair used to sign session
// identifiers. One Keypair is loaded at startup and shared read-only by every
// request handler; rotating the key requires a restart and invalidates every
// signature issued under the previous key.
package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

var (
	ErrInvalidKey         = errors.New("invalid private key encoding")
	ErrInvalidSignature   = errors.New("invalid signature encoding")
	ErrVerificationFailed = errors.New("signature verification failed")
)

// Keypair holds both halves of an ed25519 key. It is immutable after
// construction and safe for concurrent use.
type Keypair struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// Generate produces a new keypair from crypto/rand and returns the private
// half base64-encoded for storage alongside the live keypair.
func Generate() (string, *Keypair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(private.Seed())
	return encoded, &Keypair{private: private, public: public}, nil
}

// FromEncoded reconstructs a keypair from its encoded private half, as
// produced by Generate. Supplied out-of-band (API_PRIVATE_KEY) at startup.
func FromEncoded(encoded string) (*Keypair, error) {
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	private := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
	}, nil
}

// Sign signs message with the private half. Ed25519 signing is deterministic
// (RFC 8032), so there is no per-signature nonce to mismanage.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}

// Verify checks signature against the public half. Pure computation, no
// state, safe to call concurrently and arbitrarily often.
func (k *Keypair) Verify(message, signature []byte) error {
	if len(signature) != ed25519.SignatureSize {
		return ErrVerificationFailed
	}
	if !ed25519.Verify(k.public, message, signature) {
		return ErrVerificationFailed
	}
	return nil
}

// EncodeSignature converts a raw signature to its cookie text form.
func EncodeSignature(signature []byte) string {
	return base64.StdEncoding.EncodeToString(signature)
}

// DecodeSignature parses the cookie text form back into raw signature bytes.
func DecodeSignature(encoded string) ([]byte, error) {
	signature, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	return signature, nil
}
