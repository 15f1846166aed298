package sink

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
)

// Memory keeps chunks in process memory.
type Memory struct {
	mu     sync.RWMutex
	chunks map[string]map[int][]byte
}

func NewMemory() *Memory {
	return &Memory{chunks: make(map[string]map[int][]byte)}
}

func (m *Memory) Write(_ context.Context, key string, index int, data []byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[key]
	if !ok {
		c = make(map[int][]byte)
		m.chunks[key] = c
	}
	c[index] = buf
	return nil
}

func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chunks[key]
	if !ok {
		return nil, ErrNotFound
	}
	idx := make([]int, 0, len(c))
	for i := range c {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	var buf bytes.Buffer
	for _, i := range idx {
		buf.Write(c[i])
	}
	return io.NopCloser(&buf), nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[key]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// Keys lists the keys currently held.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.chunks))
	for k := range m.chunks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
