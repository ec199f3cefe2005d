package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// DefaultLength is the number of digits produced when no length is configured.
const DefaultLength = 6

// ErrInvalidStaticCode is returned when a static code is not made of exactly length digits.
var ErrInvalidStaticCode = errors.New("otp: static code must contain only digits of the configured length")

// Generator produces one-time codes.
type Generator interface {
	// Generate returns a new code or the error of the randomness source.
	Generate() (string, error)
}

// Option configures Numeric.
type Option func(*Numeric)

// WithRandReader replaces the randomness source. crypto/rand.Reader is used by default.
func WithRandReader(r io.Reader) Option {
	return func(n *Numeric) {
		if r != nil {
			n.reader = r
		}
	}
}

// Numeric generates codes of uniformly random decimal digits.
type Numeric struct {
	length int
	reader io.Reader
}

// NewNumeric returns a Numeric generator. A non-positive length falls back to DefaultLength.
func NewNumeric(length int, opts ...Option) *Numeric {
	if length <= 0 {
		length = DefaultLength
	}

	n := &Numeric{length: length, reader: rand.Reader}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Generate returns a code of n.length digits.
func (n *Numeric) Generate() (string, error) {
	ten := big.NewInt(10)
	code := make([]byte, n.length)

	for i := range code {
		d, err := rand.Int(n.reader, ten)
		if err != nil {
			return "", fmt.Errorf("otp: read random digit: %w", err)
		}
		code[i] = byte('0' + d.Int64())
	}

	return string(code), nil
}

// Static always returns the same code.
type Static struct {
	code string
}

// NewStatic validates code against length and returns a Static generator.
func NewStatic(code string, length int) (*Static, error) {
	if length <= 0 {
		length = DefaultLength
	}
	if !IsDigits(code, length) {
		return nil, ErrInvalidStaticCode
	}

	return &Static{code: code}, nil
}

// Generate returns the configured code.
func (s *Static) Generate() (string, error) {
	return s.code, nil
}

// IsDigits reports whether s is exactly length ASCII digits.
func IsDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
