// Package random provides seed generation and the seeded pseudo-random
// source used for reproducible role assignment.
package random

import (
	crand "crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// NewSeed generates a random 16-character hex seed using crypto/rand.
func NewSeed() (string, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random seed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// Token returns a URL-safe random token built from n random bytes.
func Token(n int) (string, error) {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Source is the pseudo-random source the assignment engine draws from.
type Source interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Factory builds a Source from a seed string.
type Factory func(seed string) Source

// NewSource returns a deterministic PCG source derived from the seed string.
func NewSource(seed string) Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	sum := h.Sum64()
	return rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))
}

// Shuffle permutes s in place using src (Fisher-Yates).
func Shuffle[T any](src Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Choice returns a uniformly chosen element of s. s must not be empty.
func Choice[T any](src Source, s []T) T {
	return s[src.IntN(len(s))]
}
