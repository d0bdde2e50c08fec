package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	want := Event{
		Timestamp: time.Now(),
		EventType: TypeLoginAttempt,
		AccountID: "acct-1",
		Success:   true,
	}
	d.Emit(context.Background(), want)

	select {
	case got := <-sink.Events():
		if got.EventType != want.EventType || got.AccountID != want.AccountID {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled config should yield a nil dispatcher")
	}
	// All methods must be safe on nil.
	d.Emit(context.Background(), Event{EventType: TypeLogout})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDropIfFullCountsDrops(t *testing.T) {
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-block })
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: TypeLoginAttempt})
	}
	if d.Dropped() == 0 {
		t.Error("no drops counted with a blocked sink and full buffer")
	}
	close(block)
	d.Close()
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, NewJSONWriterSink(&buf))

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: TypePasswordChanged, AccountID: "acct-1"})
	}
	d.Close()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	if lines != 5 {
		t.Fatalf("drained %d events, want 5", lines)
	}

	var event Event
	if err := json.Unmarshal(bytes.Split(buf.Bytes(), []byte("\n"))[0], &event); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if event.EventType != TypePasswordChanged {
		t.Fatalf("event type = %q", event.EventType)
	}
}

func TestEmitAfterCloseIsNoOp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	d.Close()
	d.Emit(context.Background(), Event{EventType: TypeLogout})

	select {
	case e := <-sink.Events():
		t.Fatalf("event %q delivered after Close", e.EventType)
	default:
	}
}

type sinkFunc func(context.Context, Event)

func (f sinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }
