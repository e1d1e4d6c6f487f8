package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Hasher derives password hashes from a password and a per-user salt. The
// same inputs always yield the same hash.
type Hasher interface {
	Hash(password, salt string) string
	NewSalt() (string, error)
	Verify(password, salt, hash string) bool
}

// Argon2Hasher implements Hasher with argon2id.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// NewHasher returns an argon2id hasher with the RFC 9106 second recommended
// parameter set.
func NewHasher() *Argon2Hasher {
	return &Argon2Hasher{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

func (h *Argon2Hasher) Hash(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), h.Time, h.Memory, h.Threads, h.KeyLen)
	return hex.EncodeToString(key)
}

func (h *Argon2Hasher) NewSalt() (string, error) {
	buf := make([]byte, h.SaltLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (h *Argon2Hasher) Verify(password, salt, hash string) bool {
	got := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}
