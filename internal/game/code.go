package game

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"

	"github.com/aaronzipp/word-impostor/internal/models"
)

// codeRange covers the 6-digit codes 100000..999999.
const codeRange = 900000

// GenerateCode creates a random 6-digit join code.
func GenerateCode() string {
	n, err := crand.Int(crand.Reader, big.NewInt(codeRange))
	if err != nil {
		// fallback to math/rand if crypto fails
		return strconv.Itoa(100000 + rand.Intn(codeRange))
	}
	return strconv.Itoa(100000 + int(n.Int64()))
}

// maxCodeAttempts bounds the uniqueness retry loop so a saturated store
// surfaces an error instead of spinning.
const maxCodeAttempts = 1000

// UniqueCode generates codes until taken reports a free one.
func UniqueCode(taken func(code string) bool) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := GenerateCode()
		if !taken(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not find a free join code", models.ErrValidation)
}
