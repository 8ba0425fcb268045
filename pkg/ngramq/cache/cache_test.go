package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	base := Key{Fingerprint: "abc", N: 2, MinOccurrences: 1, StopWords: "the", SortField: "total_cost", Descending: true}
	assert.Equal(t, base.String(), base.String())

	variants := []Key{base, base, base, base, base, base}
	variants[0].N = 3
	variants[1].MinOccurrences = 2
	variants[2].StopWords = ""
	variants[3].SortField = "cvr"
	variants[4].Descending = false
	variants[5].CountMode = "distinct"
	for _, v := range variants {
		assert.NotEqual(t, base.String(), v.String(), "%+v", v)
	}
}

func TestGetSet(t *testing.T) {
	c := New[[]string](0)
	key := Key{Fingerprint: "f", N: 1}

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []string{"a"})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrComputeOnce(t *testing.T) {
	c := New[int](time.Minute)
	key := Key{Fingerprint: "f", N: 2}

	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.GetOrCompute(key, func() (int, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, computed, err := c.GetOrCompute(key, func() (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.False(t, computed)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New[int](0)
	key := Key{Fingerprint: "f"}
	boom := errors.New("boom")

	_, computed, err := c.GetOrCompute(key, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, computed)

	v, computed, err := c.GetOrCompute(key, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Equal(t, 7, v)
}
