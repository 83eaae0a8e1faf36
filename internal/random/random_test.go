package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(1995), New(1995)
	for range 100 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDeriveStreamsDiffer(t *testing.T) {
	s0, s1 := Derive(42, 0), Derive(42, 1)

	same := 0
	for range 64 {
		if s0.Uint64() == s1.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 2)

	assert.Equal(t, DeriveSeed(42, 3), DeriveSeed(42, 3))
	assert.NotEqual(t, DeriveSeed(42, 3), DeriveSeed(43, 3))
}
