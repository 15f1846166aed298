package downloads

import (
	"sync"
	"time"
)

const speedWindow = 5 * time.Second

type sample struct {
	at time.Time
	n  int64
}

// speedMeter tracks bytes/second over a sliding window.
type speedMeter struct {
	mu      sync.Mutex
	now     func() time.Time
	window  time.Duration
	started time.Time
	samples []sample
}

func newSpeedMeter(now func() time.Time, window time.Duration) *speedMeter {
	return &speedMeter{now: now, window: window}
}

func (m *speedMeter) add(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if m.started.IsZero() {
		m.started = now
	}
	m.samples = append(m.samples, sample{at: now, n: int64(n)})
	m.trim(now)
}

func (m *speedMeter) trim(now time.Time) {
	cutoff := now.Add(-m.window)
	i := 0
	for i < len(m.samples) && !m.samples[i].at.After(cutoff) {
		i++
	}
	m.samples = m.samples[i:]
}

// rate divides the bytes seen within the window by the window length, or
// by the time since the first sample while that is shorter (at least 1s).
func (m *speedMeter) rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.trim(now)
	if len(m.samples) == 0 {
		return 0
	}

	var total int64
	for _, s := range m.samples {
		total += s.n
	}
	span := m.window
	if since := now.Sub(m.started); since < span {
		span = since
	}
	if span < time.Second {
		span = time.Second
	}
	return float64(total) / span.Seconds()
}
