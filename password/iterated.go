package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"time"
)

// DefaultIterations is an exported constant or variable used by the password schemes.
const DefaultIterations = 1000

const saltLength = 32

// Iterated is the salted iterated-SHA256 password scheme. The salt and the
// hex digest are stored as separate fields; contrast with [Argon2], whose
// PHC string is self-contained.
//
// Iterated instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Iterated struct {
	iterations int
}

// NewIterated describes the newiterated operation and its observable behavior.
//
// NewIterated may return an error when input validation, dependency calls, or security checks fail.
func NewIterated(iterations int) (*Iterated, error) {
	if iterations < 1 {
		return nil, errors.New("iterations must be at least 1")
	}
	return &Iterated{iterations: iterations}, nil
}

// GenerateSalt produces a 32-hex-character salt derived from the current
// time and 32 bytes of CSPRNG output.
func (h *Iterated) GenerateSalt() (string, error) {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return "", err
	}

	sum := sha256.New()
	sum.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	sum.Write(seed)
	return hex.EncodeToString(sum.Sum(nil))[:saltLength], nil
}

// Hash digests salt+password+salt, then feeds the hex digest back through
// SHA-256 with the salt for the configured number of rounds. The result is
// a 64-hex-character string.
func (h *Iterated) Hash(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password + salt))
	digest := hex.EncodeToString(sum[:])

	for i := 0; i < h.iterations; i++ {
		sum = sha256.Sum256([]byte(digest + salt))
		digest = hex.EncodeToString(sum[:])
	}
	return digest
}

// Verify recomputes the digest and compares it to storedHash in constant
// time.
func (h *Iterated) Verify(password, salt, storedHash string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
