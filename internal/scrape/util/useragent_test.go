package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatorEmptyPool(t *testing.T) {
	_, err := NewRotator(nil)
	require.Error(t, err)
}

func TestRotatorNeverRepeatsConsecutively(t *testing.T) {
	pool := []string{"ua-a", "ua-b", "ua-c"}
	r, err := NewSeededRotator(pool, 42)
	require.NoError(t, err)

	prev := r.Next()
	for i := 0; i < 1000; i++ {
		cur := r.Next()
		require.NotEqual(t, prev, cur, "repeat at draw %d", i)
		assert.Contains(t, pool, cur)
		prev = cur
	}
}

func TestRotatorSeededIsDeterministic(t *testing.T) {
	a, err := NewSeededRotator(DefaultUserAgents, 7)
	require.NoError(t, err)
	b, err := NewSeededRotator(DefaultUserAgents, 7)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestRotatorSingleEntryPool(t *testing.T) {
	r, err := NewSeededRotator([]string{"only"}, 1)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.Equal(t, "only", r.Next())
	}
}
