package linkcode

import (
	"crypto/rand"
	"math/big"
)

// Alphabet excludes lookalike characters (0/O, 1/I/l) so codes survive being
// read aloud or retyped from a screenshot.
const chars = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const codeLength = 10

// New returns a URL-safe random link code. Uniqueness is enforced by the
// store's unique index; callers regenerate on collision.
func New() (string, error) {
	b := make([]byte, codeLength)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		b[i] = chars[num.Int64()]
	}
	return string(b), nil
}
