package realtime

import (
	"context"
	"testing"
	"time"
)

func change(table, rowID, scopeColumn, scopeValue string) Change {
	return Change{
		Table:       table,
		Action:      ActionInsert,
		RowID:       rowID,
		ScopeColumn: scopeColumn,
		ScopeValue:  scopeValue,
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	}
}

func expectChange(t *testing.T, stream <-chan Change, rowID string) {
	t.Helper()
	select {
	case received := <-stream:
		if received.RowID != rowID {
			t.Fatalf("expected row %q, got %q", rowID, received.RowID)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected change for row %q", rowID)
	}
}

func expectSilence(t *testing.T, stream <-chan Change) {
	t.Helper()
	select {
	case received := <-stream:
		t.Fatalf("unexpected change %+v", received)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishDeliversToMatchingScope(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	carOne, stopOne := hub.Subscribe(ctx, "car_parts", "car_id", "car-1")
	defer stopOne()
	carTwo, stopTwo := hub.Subscribe(ctx, "car_parts", "car_id", "car-2")
	defer stopTwo()

	hub.Publish(change("car_parts", "part-1", "car_id", "car-1"))

	expectChange(t, carOne, "part-1")
	expectSilence(t, carTwo)
}

func TestTableWideSubscriptionSeesAllScopes(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, stop := hub.Subscribe(ctx, "car_parts", "", "")
	defer stop()

	hub.Publish(change("car_parts", "part-1", "car_id", "car-1"))
	hub.Publish(change("car_parts", "part-2", "car_id", "car-2"))

	expectChange(t, all, "part-1")
	expectChange(t, all, "part-2")
}

func TestPublishIgnoresOtherTables(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	parts, stop := hub.Subscribe(ctx, "car_parts", "", "")
	defer stop()

	hub.Publish(change("maintenance_logs", "log-1", "car_id", "car-1"))
	expectSilence(t, parts)
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	stream, stop := hub.Subscribe(context.Background(), "car_parts", "car_id", "car-1")
	stop()

	hub.Publish(change("car_parts", "part-1", "car_id", "car-1"))
	expectSilence(t, stream)
}

func TestSlowSubscriberLosesInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, stop := hub.Subscribe(ctx, "car_parts", "car_id", "car-1")
	defer stop()

	// Overflow the buffer without reading; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			hub.Publish(change("car_parts", "part", "car_id", "car-1"))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
	if len(stream) == 0 {
		t.Fatalf("expected buffered changes")
	}
}

func TestSignalCoalescesChanges(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, stop := hub.Subscribe(ctx, "car_parts", "car_id", "car-1")
	defer stop()
	notify := Signal(ctx, stream)

	hub.Publish(change("car_parts", "part-1", "car_id", "car-1"))
	hub.Publish(change("car_parts", "part-2", "car_id", "car-1"))

	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatalf("expected a notification")
	}
}
