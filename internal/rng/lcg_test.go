package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLCG_Deterministic(t *testing.T) {
	a := NewLCG(42)
	b := NewLCG(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(52), b.Intn(52))
	}

	assert.Equal(t, int64(42), a.Seed())
}

func TestLCG_Next(t *testing.T) {
	l := NewLCG(0)
	assert.Equal(t, uint32(1013904223), l.Next())
	assert.Equal(t, uint32(1196435762), l.Next())
}

func TestLCG_Intn(t *testing.T) {
	l := NewLCG(7)
	for i := 0; i < 1000; i++ {
		n := l.Intn(10)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10)
	}

	assert.Panics(t, func() {
		l.Intn(0)
	})
}

func TestLCG_DifferentSeeds(t *testing.T) {
	a := NewLCG(1)
	b := NewLCG(2)

	same := 0
	for i := 0; i < 20; i++ {
		if a.Intn(1000) == b.Intn(1000) {
			same++
		}
	}

	assert.Less(t, same, 20)
}
