// Package telemetry records every orchestrator-visible Event in a
// bounded ring buffer and fans each one out to zero or more Sinks
// (Datadog, Splunk, PagerDuty) over each vendor's own ingestion
// protocol: DogStatsD over UDP for Datadog, HTTP for Splunk HEC and
// the PagerDuty Events API.
package telemetry

import (
	"sync"
	"time"

	"github.com/vigil-eol/advisor/model"
)

// EventKind distinguishes the stages the orchestrator and cache emit
// events for: every state transition, provider call start/finish,
// cache hit/miss, retry, cancellation, and classifier decision.
type EventKind string

const (
	EventClassified      EventKind = "classified"
	EventInventoryStarted EventKind = "inventory_started"
	EventInventoryDone   EventKind = "inventory_done"
	EventLookupStarted   EventKind = "lookup_started"
	EventLookupSucceeded EventKind = "lookup_succeeded"
	EventLookupFailed    EventKind = "lookup_failed"
	EventCacheHit        EventKind = "cache_hit"
	EventCacheMiss       EventKind = "cache_miss"
	EventProviderRetry   EventKind = "provider_retry"
	EventPlanCompleted   EventKind = "plan_completed"
	EventCancelled       EventKind = "cancelled"
	EventReportRendered  EventKind = "report_rendered"
)

// Event is one telemetry record. Fields beyond Kind/Timestamp are
// populated as available for the Kind in question. SessionID and
// RequestID identify the Chat invocation the event belongs to;
// Component names the emitting layer (classifier, orchestrator,
// cache, provider:<id>, reporter).
type Event struct {
	Kind        EventKind       `json:"kind"`
	Timestamp   time.Time       `json:"timestamp"`
	SessionID   string          `json:"session_id,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Component   string          `json:"component,omitempty"`
	AssetName   string          `json:"asset_name,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	Risk        model.Risk      `json:"risk,omitempty"`
	Status      model.Status    `json:"status,omitempty"`
	ErrorKind   model.ErrorKind `json:"error_kind,omitempty"`
	DurationMs  int64           `json:"duration_ms,omitempty"`
	Attempt     int             `json:"attempt,omitempty"`
	Extra       map[string]any  `json:"extra,omitempty"`
}

// Sink is a destination telemetry Events are forwarded to. Record
// must not block the caller for long — slow sinks should buffer
// internally.
type Sink interface {
	Record(e Event)
}

// Recorder is the ring-buffer-backed telemetry hub the orchestrator
// and cache hold a reference to. It is never asked to implement
// backpressure: once full, the oldest event is evicted. The single
// producer lock serializes Emit; Recent/EventsForSession read a
// point-in-time snapshot taken under the same lock.
type Recorder struct {
	mu    sync.Mutex
	buf   []Event
	head  int
	count int
	size  int

	sinks []Sink
}

// NewRecorder creates a Recorder with the given ring buffer capacity
// (default 10000) and the given sinks, which are called synchronously
// for every Emit — callers wanting async delivery should wrap a slow
// sink accordingly, running its own flush goroutine internally.
func NewRecorder(capacity int, sinks ...Sink) *Recorder {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Recorder{buf: make([]Event, capacity), size: capacity, sinks: sinks}
}

// Emit appends an event to the ring buffer and forwards it to every
// configured Sink.
func (r *Recorder) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()

	for _, s := range r.sinks {
		s.Record(e)
	}
}

// Recent returns up to n of the most recently emitted events, newest
// last.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		idx := (r.head - n + i + r.size) % r.size
		out[i] = r.buf[idx]
	}
	return out
}

// EventsForSession returns up to n of the most recent events matching
// sessionID, newest last. This is the read-only accessor the
// orchestrator exposes for session replay/debugging.
func (r *Recorder) EventsForSession(sessionID string, n int) []Event {
	r.mu.Lock()
	all := make([]Event, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.head - r.count + i + r.size) % r.size
		all[i] = r.buf[idx]
	}
	r.mu.Unlock()

	var matched []Event
	for _, e := range all {
		if e.SessionID == sessionID {
			matched = append(matched, e)
		}
	}
	if n > 0 && len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	return matched
}
