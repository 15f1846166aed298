package downloads

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shardfetch/internal/bridge"
	"github.com/dmitrijs2005/shardfetch/internal/client/config"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/shard"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers with the configured funcs and counts calls.
type fakeGateway struct {
	mu       sync.Mutex
	issue    func(ctx context.Context, containerID, fileName string) (bridge.Token, error)
	pointers func(ctx context.Context, containerID, fileName string, tok bridge.Token) (bridge.PointerList, error)
	issued   int
	closed   int
}

func (g *fakeGateway) IssueToken(ctx context.Context, containerID, fileName string) (bridge.Token, error) {
	g.mu.Lock()
	g.issued++
	g.mu.Unlock()
	if g.issue == nil {
		return bridge.Token{Value: "tok", ContainerID: containerID, Operation: bridge.OperationPull}, nil
	}
	return g.issue(ctx, containerID, fileName)
}

func (g *fakeGateway) GetPointers(ctx context.Context, containerID, fileName string, tok bridge.Token) (bridge.PointerList, error) {
	if g.pointers == nil {
		return inlinePointers("hello ", "world"), nil
	}
	return g.pointers(ctx, containerID, fileName, tok)
}

func (g *fakeGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed++
	return nil
}

func (g *fakeGateway) closeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// inlinePointers builds a pointer list whose shards travel as data URLs.
func inlinePointers(parts ...string) bridge.PointerList {
	list := make(bridge.PointerList, 0, len(parts))
	for i, p := range parts {
		list = append(list, bridge.Pointer{
			Index: i,
			Hash:  shard.Hash([]byte(p)),
			Size:  int64(len(p)),
			Data:  "data:;base64," + base64.StdEncoding.EncodeToString([]byte(p)),
		})
	}
	return list
}

// recorder collects events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) listen(c *Client, names ...string) {
	for _, n := range names {
		c.On(n, r.handle)
	}
}

func newTestClient(t *testing.T, gw bridge.Gateway, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithGateway(gw),
		WithStore(sink.NewMemory()),
		WithLogger(logging.Nop()),
		WithUnhandledError(func(error) {}),
	}
	c, err := New(config.Config{}, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { destroyAndWait(t, c) })
	return c
}

func destroyAndWait(t *testing.T, c *Client) {
	t.Helper()
	done := make(chan struct{})
	c.Destroy(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("destroy callback not invoked")
	}
}

func waitFile(t *testing.T, f *File) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-f.Done():
		return f.Err()
	case <-ctx.Done():
		t.Fatalf("file %s did not finish, status %s", f.ID, f.Status())
		return nil
	}
}

// countingStore counts Delete calls on top of a memory store.
type countingStore struct {
	*sink.Memory
	mu      sync.Mutex
	deletes []string
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, key)
	s.mu.Unlock()
	return s.Memory.Delete(ctx, key)
}

func (s *countingStore) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}
