package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close() //nolint:errcheck
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "fees")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"a":1}`)
	require.NoError(t, s.Set(ctx, "fees", value, time.Minute))
	value[0] = 'x'

	got, ok, err := s.Get(ctx, "fees")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Delete(ctx, "fees"))
	_, ok, _ = s.Get(ctx, "fees")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close() //nolint:errcheck
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, s.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Second)
	_, ok, _ := s.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)

	assert.Equal(t, 2, s.Len())
	s.purge()
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	defer s.Close() //nolint:errcheck
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = s.Set(ctx, key, []byte(key), time.Minute)
			_, _, _ = s.Get(ctx, key)
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
