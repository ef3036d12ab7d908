package telemetry_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/telemetry"
)

type recordingSink struct {
	events []telemetry.Event
}

func (s *recordingSink) Record(e telemetry.Event) {
	s.events = append(s.events, e)
}

func TestEmitFansOutToSinks(t *testing.T) {
	sink := &recordingSink{}
	rec := telemetry.NewRecorder(10, sink)

	rec.Emit(telemetry.Event{Kind: telemetry.EventClassified, SessionID: "s1"})
	rec.Emit(telemetry.Event{Kind: telemetry.EventLookupSucceeded, SessionID: "s2"})

	if len(sink.events) != 2 {
		t.Fatalf("expected the sink to receive both events, got %d", len(sink.events))
	}
}

func TestEventsForSessionFiltersAndOrders(t *testing.T) {
	rec := telemetry.NewRecorder(10)

	rec.Emit(telemetry.Event{Kind: telemetry.EventClassified, SessionID: "s1"})
	rec.Emit(telemetry.Event{Kind: telemetry.EventLookupStarted, SessionID: "s2"})
	rec.Emit(telemetry.Event{Kind: telemetry.EventLookupSucceeded, SessionID: "s1"})

	events := rec.EventsForSession("s1", 0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events for session s1, got %d", len(events))
	}
	if events[0].Kind != telemetry.EventClassified || events[1].Kind != telemetry.EventLookupSucceeded {
		t.Fatalf("expected events in emission order, got %+v", events)
	}
}

func TestRingBufferEvictsOldest(t *testing.T) {
	rec := telemetry.NewRecorder(2)

	rec.Emit(telemetry.Event{Kind: telemetry.EventClassified, SessionID: "s1"})
	rec.Emit(telemetry.Event{Kind: telemetry.EventLookupStarted, SessionID: "s2"})
	rec.Emit(telemetry.Event{Kind: telemetry.EventLookupSucceeded, SessionID: "s3"})

	recent := rec.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("expected the ring buffer to cap at capacity 2, got %d", len(recent))
	}
	if recent[0].SessionID != "s2" || recent[1].SessionID != "s3" {
		t.Fatalf("expected the oldest event to be evicted, got %+v", recent)
	}
}

func TestPagerDutySinkNoopsWithoutRoutingKey(t *testing.T) {
	cfg := telemetry.DefaultPagerDutyConfig()
	cfg.Enabled = true
	cfg.RoutingKey = "" // no routing key: Record must no-op, never dial out
	sink := telemetry.NewPagerDutySink(cfg, zerolog.Nop())

	// Should not panic or attempt any network call without a routing key.
	sink.Record(telemetry.Event{Kind: telemetry.EventLookupSucceeded})
}
