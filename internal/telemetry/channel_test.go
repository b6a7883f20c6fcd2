package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"mediastudio/internal/clock"
	"mediastudio/internal/telemetry"
)

type fakeConn struct {
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 128), done: make(chan struct{})}
}

func (c *fakeConn) Receive() ([]byte, error) {
	select {
	case frame, ok := <-c.frames:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	case <-c.done:
		return nil, net.ErrClosed
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// fakeDialer fails the first failures dials, then hands out fresh conns.
type fakeDialer struct {
	mu       sync.Mutex
	failures int
	dials    int
	conns    []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, rawURL string) (telemetry.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.failures != 0 {
		if d.failures > 0 {
			d.failures--
		}
		return nil, errors.New("connection refused")
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) latest() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newChannel(t *testing.T, dialer *fakeDialer, fake *clock.Fake, opts ...func(*telemetry.Options)) *telemetry.Channel {
	t.Helper()
	options := telemetry.Options{
		URL:            "ws://backend/ws/telemetry",
		Dialer:         dialer,
		Clock:          fake,
		ReconnectDelay: 3 * time.Second,
		BufferSize:     50,
	}
	for _, opt := range opts {
		opt(&options)
	}
	ch := telemetry.NewChannel(options)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestBufferKeepsNewestEventsFirst(t *testing.T) {
	buf := telemetry.NewBuffer(50)
	for i := 0; i < 60; i++ {
		buf.Push(telemetry.Event{Type: fmt.Sprintf("event-%d", i)})
	}
	got := buf.Snapshot()
	if len(got) != 50 {
		t.Fatalf("expected 50 events, got %d", len(got))
	}
	if got[0].Type != "event-59" || got[49].Type != "event-10" {
		t.Fatalf("unexpected ordering: first=%s last=%s", got[0].Type, got[49].Type)
	}
}

func TestBufferPartiallyFilled(t *testing.T) {
	buf := telemetry.NewBuffer(3)
	buf.Push(telemetry.Event{Type: "a"})
	buf.Push(telemetry.Event{Type: "b"})
	got := buf.Snapshot()
	if len(got) != 2 || got[0].Type != "b" || got[1].Type != "a" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestChannelBuffersSixtyMessagesAsNewestFifty(t *testing.T) {
	dialer := &fakeDialer{}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "connected", func() bool { return ch.State() == telemetry.StateConnected })

	conn := dialer.latest()
	for i := 0; i < 60; i++ {
		conn.frames <- []byte(fmt.Sprintf(`{"type":"event-%d","timestamp":"2026-01-01T00:00:00Z","data":{"n":%d}}`, i, i))
	}
	waitFor(t, "all frames consumed", func() bool {
		events := ch.Snapshot()
		return len(events) > 0 && events[0].Type == "event-59"
	})

	events := ch.Snapshot()
	if len(events) != 50 {
		t.Fatalf("expected 50 buffered events, got %d", len(events))
	}
	for i, event := range events {
		if want := fmt.Sprintf("event-%d", 59-i); event.Type != want {
			t.Fatalf("position %d: got %s want %s", i, event.Type, want)
		}
	}
}

func TestChannelSkipsUndecodableFrames(t *testing.T) {
	dialer := &fakeDialer{}
	fake := clock.NewFake(time.Unix(0, 0))
	var mu sync.Mutex
	var delivered []string
	ch := newChannel(t, dialer, fake, func(o *telemetry.Options) {
		o.OnEvent = func(e telemetry.Event) {
			mu.Lock()
			defer mu.Unlock()
			delivered = append(delivered, e.Type)
		}
	})
	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "connected", func() bool { return ch.State() == telemetry.StateConnected })

	conn := dialer.latest()
	conn.frames <- []byte("not json")
	conn.frames <- []byte(`{"type":"voice_processing_started","timestamp":"t"}`)
	waitFor(t, "event delivered", func() bool { return len(ch.Snapshot()) == 1 })

	if ch.State() != telemetry.StateConnected {
		t.Fatalf("bad frame should not drop the connection, state=%s", ch.State())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "voice_processing_started" {
		t.Fatalf("unexpected delivered events %v", delivered)
	}
}

func TestChannelReconnectsAfterFixedDelay(t *testing.T) {
	dialer := &fakeDialer{failures: 1}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "reconnect scheduled", func() bool {
		return fake.Pending() == 1 && ch.State() == telemetry.StateDisconnected
	})
	if ch.LastError() == nil {
		t.Fatal("expected last error after failed dial")
	}

	fake.Advance(2999 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if dialer.dialCount() != 1 {
		t.Fatalf("reconnected before delay elapsed: %d dials", dialer.dialCount())
	}

	fake.Advance(time.Millisecond)
	waitFor(t, "reconnected", func() bool { return ch.State() == telemetry.StateConnected })
	if dialer.dialCount() != 2 {
		t.Fatalf("expected 2 dials, got %d", dialer.dialCount())
	}
	if ch.LastError() != nil {
		t.Fatalf("expected error cleared on connect, got %v", ch.LastError())
	}
}

func TestChannelKeepsRetryingWithoutBackoffGrowth(t *testing.T) {
	dialer := &fakeDialer{failures: -1}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	for i := 1; i <= 6; i++ {
		waitFor(t, fmt.Sprintf("dial %d failure", i), func() bool {
			return dialer.dialCount() == i && fake.Pending() == 1
		})
		fake.Advance(3 * time.Second)
	}
	waitFor(t, "seventh dial", func() bool { return dialer.dialCount() == 7 })
}

func TestChannelReconnectsAfterServerClose(t *testing.T) {
	dialer := &fakeDialer{}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "connected", func() bool { return ch.State() == telemetry.StateConnected })

	first := dialer.latest()
	close(first.frames)
	waitFor(t, "disconnect", func() bool {
		return ch.State() == telemetry.StateDisconnected && fake.Pending() == 1
	})
	if !errors.Is(ch.LastError(), io.EOF) {
		t.Fatalf("expected EOF as last error, got %v", ch.LastError())
	}

	fake.Advance(3 * time.Second)
	waitFor(t, "second connection", func() bool {
		return dialer.dialCount() == 2 && ch.State() == telemetry.StateConnected
	})
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	dialer := &fakeDialer{failures: -1}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "reconnect scheduled", func() bool { return fake.Pending() == 1 })

	if err := ch.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if fake.Pending() != 0 {
		t.Fatalf("expected reconnect timer cancelled, %d pending", fake.Pending())
	}
	fake.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	if dialer.dialCount() != 1 {
		t.Fatalf("expected no dials after Close, got %d", dialer.dialCount())
	}
	if err := ch.Start(context.Background()); !errors.Is(err, telemetry.ErrClosed) {
		t.Fatalf("expected ErrClosed on restart, got %v", err)
	}
}

func TestCloseClosesLiveConnection(t *testing.T) {
	dialer := &fakeDialer{}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "connected", func() bool { return ch.State() == telemetry.StateConnected })

	if err := ch.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !dialer.latest().isClosed() {
		t.Fatal("expected live connection closed")
	}
	if ch.State() != telemetry.StateDisconnected {
		t.Fatalf("expected disconnected state, got %s", ch.State())
	}
	time.Sleep(10 * time.Millisecond)
	if fake.Pending() != 0 {
		t.Fatal("closing must not schedule a reconnect")
	}
}

func TestContextCancellationClosesChannel(t *testing.T) {
	dialer := &fakeDialer{}
	fake := clock.NewFake(time.Unix(0, 0))
	ch := newChannel(t, dialer, fake)

	ctx, cancel := context.WithCancel(context.Background())
	if err := ch.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	waitFor(t, "connected", func() bool { return ch.State() == telemetry.StateConnected })
	cancel()
	waitFor(t, "connection closed", func() bool { return dialer.latest().isClosed() })
}

func TestEventSummary(t *testing.T) {
	event, err := telemetry.DecodeEvent([]byte(`{"type":" node_intent_router_completed ","timestamp":"t","data":{"intent":"greeting"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent returned error: %v", err)
	}
	if event.Type != "node_intent_router_completed" {
		t.Fatalf("expected trimmed type, got %q", event.Type)
	}
	if got := event.Summary(); got != `{"intent":"greeting"}` {
		t.Fatalf("unexpected summary %q", got)
	}
	if (telemetry.Event{}).Summary() != "" {
		t.Fatal("expected empty summary without data")
	}
}
