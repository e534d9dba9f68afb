// Package otpcode generates, formats and hashes numeric one-time codes.
package otpcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// DefaultDigits is the length of codes issued by the service.
const DefaultDigits = 6

var (
	ErrInvalidDigits = errors.New("code length must be between 1 and 18 digits")
	ErrInvalidCost   = fmt.Errorf("hash cost must be 0 or between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
)

// Generator draws codes uniformly from [0, 10^digits) using src.
type Generator struct {
	src    io.Reader
	digits int
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator(digits int) (*Generator, error) {
	return NewGeneratorFrom(rand.Reader, digits)
}

// NewGeneratorFrom allows tests to supply a deterministic entropy source.
func NewGeneratorFrom(src io.Reader, digits int) (*Generator, error) {
	if digits < 1 || digits > 18 {
		return nil, ErrInvalidDigits
	}
	return &Generator{src: src, digits: digits}, nil
}

// Generate returns a new zero-padded numeric code.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.src, upperBound(g.digits))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return Format(n.Int64(), g.digits), nil
}

// Format renders n left-padded with zeros to exactly digits characters.
func Format(n int64, digits int) string {
	return fmt.Sprintf("%0*d", digits, n)
}

// Valid reports whether code is exactly digits ASCII digits.
func Valid(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// CheckCost accepts 0 (bcrypt.DefaultCost) or a cost bcrypt can use.
func CheckCost(cost int) error {
	if cost == 0 || (cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost) {
		return nil
	}
	return ErrInvalidCost
}

// Hash returns the bcrypt hash of code. A cost below bcrypt.MinCost uses bcrypt.DefaultCost.
func Hash(code string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	return string(h), nil
}

// Matches reports whether code hashes to hash.
func Matches(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

func upperBound(digits int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
}
