package shard

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapFetcher serves shards by pointer hash and records fetch order.
type mapFetcher struct {
	mu     sync.Mutex
	shards map[string]string
	order  []int
	err    error
}

func (f *mapFetcher) Fetch(_ context.Context, p bridge.Pointer) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, p.Index)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.shards[p.Hash])), nil
}

func pointersFor(parts ...string) (bridge.PointerList, map[string]string) {
	var list bridge.PointerList
	shards := map[string]string{}
	for i, part := range parts {
		h := Hash([]byte(part))
		shards[h] = part
		list = append(list, bridge.Pointer{Index: i, Hash: h, Size: int64(len(part))})
	}
	return list, shards
}

func readKey(t *testing.T, s sink.Store, key string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), key)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestHash(t *testing.T) {
	// ripemd160(sha256("")).
	assert.Equal(t, "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb", Hash(nil))
}

func TestResolve_InOrderChunks(t *testing.T) {
	pointers, shards := pointersFor("hello ", "shard ", "world")
	f := &mapFetcher{shards: shards}
	store := sink.NewMemory()

	var chunks []int
	n, err := NewResolver(f, 4, nil).Resolve(context.Background(), pointers, store, "k", func(n int) {
		chunks = append(chunks, n)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(17), n)
	assert.Equal(t, "hello shard world", readKey(t, store, "k"))
	assert.Equal(t, []int{0, 1, 2}, f.order)
	// Each shard is cut into 4 byte pieces; the last piece of a shard may be short.
	assert.Equal(t, []int{4, 2, 4, 2, 4, 1}, chunks)
}

func TestResolve_IntegrityFailure(t *testing.T) {
	pointers, shards := pointersFor("abc", "def")
	shards[pointers[1].Hash] = "xyz"

	_, err := NewResolver(&mapFetcher{shards: shards}, 0, nil).
		Resolve(context.Background(), pointers, sink.NewMemory(), "k", nil)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "shard 1")
}

func TestResolve_SizeMismatch(t *testing.T) {
	pointers, shards := pointersFor("abc")
	pointers[0].Size = 10

	_, err := NewResolver(&mapFetcher{shards: shards}, 0, nil).
		Resolve(context.Background(), pointers, sink.NewMemory(), "k", nil)
	assert.ErrorIs(t, err, ErrShortShard)
}

func TestResolve_NoHashSkipsVerification(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte("inline"))
	pointers := bridge.PointerList{{Index: 0, Size: 6, Data: "data:;base64," + data}}
	store := sink.NewMemory()

	_, err := NewResolver(NewHTTPFetcher("http", nil), 0, nil).
		Resolve(context.Background(), pointers, store, "k", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", readKey(t, store, "k"))
}

func TestResolve_FetchError(t *testing.T) {
	pointers, _ := pointersFor("abc", "def")
	boom := errors.New("farmer offline")

	_, err := NewResolver(&mapFetcher{err: boom}, 0, nil).
		Resolve(context.Background(), pointers, sink.NewMemory(), "k", nil)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_Cancelled(t *testing.T) {
	pointers, shards := pointersFor("abc", "def")
	f := &mapFetcher{shards: shards}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(f, 0, nil).Resolve(ctx, pointers, sink.NewMemory(), "k", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.order)
}

type failingStore struct{ sink.Store }

func (failingStore) Write(context.Context, string, int, []byte) error {
	return errors.New("no space")
}

func TestResolve_SinkError(t *testing.T) {
	pointers, shards := pointersFor("abc")
	_, err := NewResolver(&mapFetcher{shards: shards}, 0, nil).
		Resolve(context.Background(), pointers, failingStore{sink.NewMemory()}, "k", nil)
	assert.ErrorContains(t, err, "no space")
}
