package downloads

import "sync"

const (
	EventFile     = "file"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is passed to handlers. Err is set for "error", Bytes for
// "progress".
type Event struct {
	Name  string
	File  Snapshot
	Bytes int
	Err   error
}

type Handler func(Event)

type subscriber struct {
	id int
	h  Handler
}

// emitter maps event names to their subscribers.
type emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
}

func newEmitter() *emitter {
	return &emitter{subs: make(map[string][]subscriber)}
}

func (e *emitter) on(name string, h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.subs[name] = append(e.subs[name], subscriber{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(name, id) })
	}
}

func (e *emitter) remove(name string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := e.subs[name]
	for i, s := range subs {
		if s.id == id {
			e.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.subs[name]) == 0 {
		delete(e.subs, name)
	}
}

func (e *emitter) off(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, name)
}

func (e *emitter) has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[name]) > 0
}

// emit calls the handlers registered when emit starts, outside the lock,
// so handlers may subscribe or unsubscribe. live, when set, is checked
// before every handler and stops delivery once it reports false. emit
// returns the number of handlers called.
func (e *emitter) emit(ev Event, live func() bool) int {
	e.mu.RLock()
	subs := append([]subscriber(nil), e.subs[ev.Name]...)
	e.mu.RUnlock()

	called := 0
	for _, s := range subs {
		if live != nil && !live() {
			break
		}
		s.h(ev)
		called++
	}
	return called
}
