package game

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength matches the six character codes players type in.
const DefaultCodeLength = 6

// MaxCodeLength is the widest code the game_sessions table can hold.
const MaxCodeLength = 8

// NewCodeGenerator returns a generator of random upper-case alphanumeric codes.
func NewCodeGenerator(length int) func() string {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if length > MaxCodeLength {
		length = MaxCodeLength
	}
	limit := big.NewInt(int64(len(codeAlphabet)))
	return func() string {
		buf := make([]byte, length)
		for i := range buf {
			n, err := rand.Int(rand.Reader, limit)
			if err != nil {
				buf[i] = codeAlphabet[0]
				continue
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		return string(buf)
	}
}

// NormalizeCode makes code comparison case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
