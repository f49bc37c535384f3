package dataloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	mu     sync.Mutex
	calls  int
	counts map[uint]int64
	err    error
}

func (s *countingStore) CountPostsByAuthors(ctx context.Context, ids []uint) (map[uint]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[uint]int64, len(ids))
	for _, id := range ids {
		out[id] = s.counts[id]
	}
	return out, nil
}

func TestPostCounts_SingleBatch(t *testing.T) {
	store := &countingStore{counts: map[uint]int64{1: 3, 2: 0, 3: 7}}
	loaders := NewLoaders(store)

	counts, err := loaders.PostCounts(context.Background(), []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 0, 7}, counts)
	assert.Equal(t, 1, store.calls)
}

func TestPostCounts_NotCached(t *testing.T) {
	store := &countingStore{counts: map[uint]int64{1: 1}}
	loaders := NewLoaders(store)
	ctx := context.Background()

	_, err := loaders.PostCounts(ctx, []uint{1})
	require.NoError(t, err)

	store.mu.Lock()
	store.counts[1] = 2
	store.mu.Unlock()

	counts, err := loaders.PostCounts(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, counts)
	assert.Equal(t, 2, store.calls)
}

func TestPostCounts_Error(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	_, err := NewLoaders(store).PostCounts(context.Background(), []uint{1, 2})
	assert.Error(t, err)
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	store := &countingStore{}
	var got *Loaders
	h := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context(), store)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.NotNil(t, For(context.Background(), store))
}
