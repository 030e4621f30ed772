package otp

import (
	"crypto/rand"
	"fmt"
	"io"
)

// DefaultCodeLength is the number of digits in a generated code.
const DefaultCodeLength = 6

// Generator produces random numeric codes.
type Generator interface {
	// Generate returns a numeric code of the given length.
	Generate(length int) (string, error)
}

// CodeGenerator implements Generator on a cryptographically secure random
// source. Each digit is drawn independently, so leading zeros are as likely
// as any other digit (formatting a single random integer would bias them).
type CodeGenerator struct {
	rand io.Reader
}

// NewCodeGenerator returns a CodeGenerator backed by crypto/rand. A different
// reader can be injected for deterministic tests.
func NewCodeGenerator(r io.Reader) *CodeGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &CodeGenerator{rand: r}
}

// Generate returns a random numeric code of the given length.
func (g *CodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	buf := make([]byte, length)
	out := make([]byte, length)

	for i := 0; i < length; {
		if _, err := io.ReadFull(g.rand, buf[i:]); err != nil {
			return "", fmt.Errorf("otp: read random source: %w", err)
		}

		for _, b := range buf[i:] {
			// Rejection sampling: 250..255 would bias digits 0-5.
			if b >= 250 {
				continue
			}
			out[i] = '0' + b%10
			i++
			if i == length {
				break
			}
		}
	}

	return string(out), nil
}
