package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyCacheRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		c, err := NewRecencyCache[string, int](capacity)
		assert.Nil(t, c)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "capacity", cfgErr.Field)
	}
}

func TestRecencyCachePromotionOnGet(t *testing.T) {
	c, err := NewRecencyCache[string, int](2)
	require.NoError(t, err)

	c.Put("A", 1)
	c.Put("B", 2)
	_, ok := c.Get("A")
	require.True(t, ok)
	c.Put("C", 3)

	_, ok = c.Get("B")
	assert.False(t, ok, "B was least recently used")
	v, ok := c.Get("A")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestRecencyCacheEvictsInRecencyOrder(t *testing.T) {
	c, err := NewRecencyCache[int, int](3)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		c.Put(i, i*10)
		assert.LessOrEqual(t, c.Size(), 3)
	}

	assert.Equal(t, 3, c.Size())
	for i := 1; i <= 4; i++ {
		_, ok := c.Get(i)
		assert.False(t, ok, "key %d should be evicted", i)
	}
	assert.Equal(t, []int{70, 60, 50}, c.GetAll())
}

func TestRecencyCacheRePutUpdatesAndPromotes(t *testing.T) {
	c, err := NewRecencyCache[string, string](2)
	require.NoError(t, err)

	c.Put("A", "a1")
	c.Put("B", "b")
	c.Put("A", "a2")
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, []string{"a2", "b"}, c.GetAll())

	c.Put("C", "c")
	_, ok := c.Get("B")
	assert.False(t, ok)
}

func TestRecencyCacheGetAllMostRecentFirst(t *testing.T) {
	c, err := NewRecencyCache[string, int](5)
	require.NoError(t, err)

	assert.Empty(t, c.GetAll())

	c.Put("A", 1)
	c.Put("B", 2)
	c.Put("C", 3)
	c.Get("A")

	assert.Equal(t, []int{1, 3, 2}, c.GetAll())
	assert.Equal(t, 5, c.Capacity())
}

func TestRecencyCacheConcurrentAccess(t *testing.T) {
	c, err := NewRecencyCache[int, int](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Put(w*1000+i, i)
				c.Get(w*1000 + i/2)
				_ = c.GetAll()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 16, c.Size())
}
