package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 16} {
		t.Run(fmt.Sprintf("cap=%d", capacity), func(t *testing.T) {
			c := New[int, string](capacity)
			for i := 0; i <= capacity; i++ {
				evicted, ok := c.Set(i, fmt.Sprint(i))
				if i < capacity {
					assert.False(t, ok)
				} else {
					assert.True(t, ok)
					assert.Equal(t, 0, evicted)
				}
				assert.LessOrEqual(t, c.Len(), capacity)
			}
			_, ok := c.Get(0)
			assert.False(t, ok)
			for i := 1; i <= capacity; i++ {
				v, ok := c.Get(i)
				require.True(t, ok)
				assert.Equal(t, fmt.Sprint(i), v)
			}
		})
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	evicted, ok := c.Set("c", 3)
	assert.True(t, ok)
	assert.Equal(t, "b", evicted)
	assert.Equal(t, []string{"c", "a"}, c.Keys())
}

func TestMissHasNoSideEffect(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("zzz")
	assert.False(t, ok)
	assert.Equal(t, []string{"b", "a"}, c.Keys())
	assert.Equal(t, 2, c.Len())
}

func TestSetExistingUpdatesWithoutGrowing(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	_, evicted := c.Set("a", 10)
	assert.False(t, evicted)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	v, _ := c.Peek("a")
	assert.Equal(t, 10, v)
}

func TestPeekDoesNotRefresh(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Peek("a")
	evicted, _ := c.Set("c", 3)
	assert.Equal(t, "a", evicted)
}

func TestRemoveAndReuseSlots(t *testing.T) {
	c := New[int, int](3)
	for i := 0; i < 3; i++ {
		c.Set(i, i)
	}
	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, []int{2, 0}, c.Keys())

	c.Set(9, 9)
	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.nodes, 3, "freed slot reused")
	assert.Equal(t, []int{9, 2, 0}, c.Keys())
}

func TestClear(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(5, 5)
	assert.Equal(t, []int{5}, c.Keys())
}

func TestInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
}
