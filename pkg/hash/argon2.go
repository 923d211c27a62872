package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("invalid hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrInvalidPassword covers both a wrong password and an unparseable
	// stored hash; callers must not be able to tell the two apart.
	ErrInvalidPassword = errors.New("invalid password")
)

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultConfig = Argon2Config{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword derives an argon2id hash of password with a fresh random salt
// and returns the self-describing encoded form. Two calls with the same
// password never produce the same output.
func HashPassword(password string) (string, error) {
	salt := make([]byte, DefaultConfig.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return HashPasswordWithSalt(password, salt)
}

// HashPasswordWithSalt derives the hash with a caller-supplied salt. Only
// tests and other deterministic paths should use it; production flows go
// through HashPassword.
func HashPasswordWithSalt(password string, salt []byte) (string, error) {
	return hashWithConfig(password, salt, DefaultConfig)
}

func hashWithConfig(password string, salt []byte, cfg Argon2Config) (string, error) {
	if len(salt) == 0 {
		return "", ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		cfg.Iterations,
		cfg.Memory,
		cfg.Parallelism,
		cfg.KeyLength,
	)

	// Format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Key := base64.RawStdEncoding.EncodeToString(key)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, cfg.Memory, cfg.Iterations, cfg.Parallelism,
		b64Salt, b64Key,
	), nil
}

// VerifyPassword recomputes the hash using the parameters embedded in
// encodedHash and compares in constant time. Any failure, whether a
// mismatched password or a malformed stored hash, is reported as
// ErrInvalidPassword so callers cannot leak which one occurred.
func VerifyPassword(password, encodedHash string) error {
	cfg, salt, key, err := DecodeHash(encodedHash)
	if err != nil {
		return ErrInvalidPassword
	}

	otherKey := argon2.IDKey(
		[]byte(password),
		salt,
		cfg.Iterations,
		cfg.Memory,
		cfg.Parallelism,
		cfg.KeyLength,
	)

	if subtle.ConstantTimeCompare(key, otherKey) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// DecodeHash parses the textual encoding back into its cost parameters, salt
// and derived key.
func DecodeHash(encodedHash string) (*Argon2Config, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, ErrInvalidHash
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, ErrInvalidHash
	}

	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	cfg := &Argon2Config{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &cfg.Memory, &cfg.Iterations, &cfg.Parallelism); err != nil {
		return nil, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, ErrInvalidHash
	}
	cfg.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, ErrInvalidHash
	}
	cfg.KeyLength = uint32(len(key))

	return cfg, salt, key, nil
}
