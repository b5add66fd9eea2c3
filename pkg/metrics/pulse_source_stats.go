package metrics

import (
	"sort"
	"sync"
	"time"
)

// Outcome is the result class of one content source attempt.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

type sourceEntry struct {
	latency  *LatencyTracker
	outcomes map[Outcome]int64
	lastErr  string
	lastAt   time.Time
}

// SourceRegistry aggregates attempts per named source.
type SourceRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sourceEntry
	window  int
}

// NewSourceRegistry creates a registry whose latency windows hold windowSize samples.
func NewSourceRegistry(windowSize int) *SourceRegistry {
	return &SourceRegistry{
		entries: make(map[string]*sourceEntry),
		window:  windowSize,
	}
}

func (r *SourceRegistry) entry(name string) *sourceEntry {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.entries[name]; !ok {
		e = &sourceEntry{
			latency:  NewLatencyTracker(r.window),
			outcomes: make(map[Outcome]int64),
		}
		r.entries[name] = e
	}
	return e
}

// Record registers one attempt. Skipped attempts carry no latency.
func (r *SourceRegistry) Record(name string, outcome Outcome, d time.Duration, err error) {
	e := r.entry(name)
	if outcome != OutcomeSkipped {
		e.latency.Record(d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e.outcomes[outcome]++
	e.lastAt = time.Now()
	if err != nil {
		e.lastErr = err.Error()
	}
}

// SourceStats is a snapshot for one source.
type SourceStats struct {
	Name      string            `json:"name"`
	Outcomes  map[Outcome]int64 `json:"outcomes"`
	Latency   map[string]any    `json:"latency"`
	LastError string            `json:"last_error,omitempty"`
	LastAt    time.Time         `json:"last_attempt_at"`
}

// Stats returns the snapshot for one source; ok is false if it was never recorded.
func (r *SourceRegistry) Stats(name string) (SourceStats, bool) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return SourceStats{}, false
	}
	return r.snapshot(name, e), true
}

// All returns snapshots for every source, sorted by name.
func (r *SourceRegistry) All() []SourceStats {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	out := make([]SourceStats, 0, len(names))
	for _, name := range names {
		if s, ok := r.Stats(name); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *SourceRegistry) snapshot(name string, e *sourceEntry) SourceStats {
	r.mu.RLock()
	outcomes := make(map[Outcome]int64, len(e.outcomes))
	for k, v := range e.outcomes {
		outcomes[k] = v
	}
	lastErr, lastAt := e.lastErr, e.lastAt
	r.mu.RUnlock()

	return SourceStats{
		Name:      name,
		Outcomes:  outcomes,
		Latency:   e.latency.Stats().ToMap(),
		LastError: lastErr,
		LastAt:    lastAt,
	}
}
