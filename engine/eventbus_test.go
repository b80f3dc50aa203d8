package engine

import "testing"

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	bus.Subscribe(func(evt Event) {
		got = append(got, evt.Type)
	})

	bus.Publish(EventRequestQueued, nil)
	bus.Publish(EventFleetStarted, nil)

	if len(got) != 2 || got[0] != EventRequestQueued || got[1] != EventFleetStarted {
		t.Errorf("delivered = %v, want [queued started]", got)
	}
}

func TestEventBus_TypeFilter(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	bus.SubscribeTypes(func(evt Event) {
		got = append(got, evt.Type)
	}, EventRequestCompleted, EventRequestFailed)

	bus.Publish(EventRequestQueued, nil)
	bus.Publish(EventRequestCompleted, nil)
	bus.Publish(EventRequestFailed, nil)

	if len(got) != 2 {
		t.Fatalf("delivered = %d events, want 2", len(got))
	}
	if got[0] != EventRequestCompleted || got[1] != EventRequestFailed {
		t.Errorf("delivered = %v, want [completed failed]", got)
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	n := 0
	id := bus.Subscribe(func(Event) { n++ })

	bus.Publish(EventFleetStarted, nil)
	bus.Unsubscribe(id)
	bus.Publish(EventFleetStopped, nil)

	if n != 1 {
		t.Errorf("deliveries = %d, want 1", n)
	}
}

func TestEventBus_TimestampSet(t *testing.T) {
	bus := NewEventBus()
	var seen Event
	bus.Subscribe(func(evt Event) { seen = evt })
	bus.Publish(EventFleetStarted, nil)
	if seen.Timestamp.IsZero() {
		t.Error("emitted event has zero timestamp")
	}
}

func TestEventTypeNames(t *testing.T) {
	types := []EventType{
		EventRequestQueued, EventRequestStarted, EventRequestCompleted,
		EventRequestFailed, EventRobotStatusChanged, EventChargingStarted,
		EventChargingFinished, EventFleetStarted, EventFleetStopped,
		EventIngestBatchLoaded, EventReportWritten,
	}
	seen := make(map[string]bool)
	for _, typ := range types {
		name := typ.Name()
		if name == "unknown" {
			t.Errorf("type %d has no name", typ)
		}
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}
}
