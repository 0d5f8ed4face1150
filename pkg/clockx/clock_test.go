package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvictSecondChance(t *testing.T) {
	c := New(3)

	for i := range 3 {
		c.Touch(i)
		c.SetEvictable(i, true)
	}
	require.Equal(t, 3, c.Size())

	// All ref bits are set, so the first sweep clears them and the second
	// sweep evicts slot 0.
	id, ok := c.Evict()
	require.True(t, ok)
	require.Equal(t, 0, id)
	require.Equal(t, 2, c.Size())
}

func TestPinnedSlotsAreSkipped(t *testing.T) {
	c := New(3)

	for i := range 3 {
		c.Touch(i)
		c.SetEvictable(i, true)
	}
	// Slot 0 gets pinned again.
	c.SetEvictable(0, false)

	id, ok := c.Evict()
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestEvictNothingEvictable(t *testing.T) {
	c := New(2)
	c.Touch(0)
	c.Touch(1)

	_, ok := c.Evict()
	require.False(t, ok)
}

func TestRemove(t *testing.T) {
	c := New(2)
	c.Touch(0)
	c.SetEvictable(0, true)
	require.Equal(t, 1, c.Size())

	c.Remove(0)
	require.Equal(t, 0, c.Size())

	_, ok := c.Evict()
	require.False(t, ok)
}

func TestTouchKeepsVictimAlive(t *testing.T) {
	c := New(2)
	c.Touch(0)
	c.Touch(1)
	c.SetEvictable(0, true)
	c.SetEvictable(1, true)

	// Re-reference slot 0 so slot 1 loses the race.
	c.Touch(0)
	c.ref[1] = false

	id, ok := c.Evict()
	require.True(t, ok)
	require.Equal(t, 1, id)
}
