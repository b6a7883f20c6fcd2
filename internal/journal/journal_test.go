package journal_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mediastudio/internal/journal"
	"mediastudio/internal/telemetry"
	"mediastudio/internal/testsupport"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	return testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
}

func TestRecordAndListEventsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, typ := range []string{"voice_processing_started", "test_event", "voice_processing_completed"} {
		event := telemetry.Event{Type: typ, Timestamp: "2026-01-01T00:00:00Z", Data: json.RawMessage(`{"n":1}`)}
		if err := store.RecordEvent(ctx, event); err != nil {
			t.Fatalf("RecordEvent returned error: %v", err)
		}
	}
	if err := store.RecordEvent(ctx, telemetry.Event{Type: "bare"}); err != nil {
		t.Fatalf("RecordEvent without data returned error: %v", err)
	}

	records, err := store.RecentEvents(ctx, "", 3)
	if err != nil {
		t.Fatalf("RecentEvents returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Event.Type != "bare" || records[0].Event.Data != nil {
		t.Fatalf("expected newest bare event first, got %+v", records[0].Event)
	}
	if string(records[1].Event.Data) != `{"n":1}` {
		t.Fatalf("expected data round trip, got %s", records[1].Event.Data)
	}
	if records[1].ReceivedAt.IsZero() {
		t.Fatal("expected received timestamp")
	}

	filtered, err := store.RecentEvents(ctx, "test_event", 10)
	if err != nil || len(filtered) != 1 {
		t.Fatalf("expected one test_event, got %d (%v)", len(filtered), err)
	}
}

func TestPruneEventsKeepsNewest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := store.RecordEvent(ctx, telemetry.Event{Type: "tick"}); err != nil {
			t.Fatalf("RecordEvent returned error: %v", err)
		}
	}
	if err := store.PruneEvents(ctx, 4); err != nil {
		t.Fatalf("PruneEvents returned error: %v", err)
	}
	count, err := store.CountEvents(ctx)
	if err != nil || count != 4 {
		t.Fatalf("expected 4 events after prune, got %d (%v)", count, err)
	}
}

func TestConversationIsChronological(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	turns := []journal.Turn{
		{UserID: "u1", Role: "user", Text: "hello", CreatedAt: base},
		{UserID: "u1", Role: "assistant", Text: "hi", Intent: "greeting", ProcessingTime: 0.4, CreatedAt: base.Add(time.Second)},
		{UserID: "u2", Role: "user", Text: "other"},
	}
	for _, turn := range turns {
		if err := store.RecordTurn(ctx, turn); err != nil {
			t.Fatalf("RecordTurn returned error: %v", err)
		}
	}
	got, err := store.Conversation(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Conversation returned error: %v", err)
	}
	if len(got) != 2 || got[0].Text != "hello" || got[1].Intent != "greeting" {
		t.Fatalf("unexpected conversation %+v", got)
	}
	if !got[0].CreatedAt.Equal(base) {
		t.Fatalf("expected created time preserved, got %s", got[0].CreatedAt)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	if err := store.RecordEvent(context.Background(), telemetry.Event{Type: "persisted"}); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := journal.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.CountEvents(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("expected persisted event, got %d (%v)", count, err)
	}
}

func TestRecorderHoldsExclusiveLock(t *testing.T) {
	store := openStore(t)
	recorder, err := journal.NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}
	if _, err := journal.NewRecorder(store, nil); !errors.Is(err, journal.ErrRecorderRunning) {
		t.Fatalf("expected ErrRecorderRunning, got %v", err)
	}

	recorder.Record(telemetry.Event{Type: "test_event"})
	if recorder.Recorded() != 1 || recorder.Failed() != 0 {
		t.Fatalf("unexpected counters recorded=%d failed=%d", recorder.Recorded(), recorder.Failed())
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	again, err := journal.NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("expected lock to be free after Close, got %v", err)
	}
	_ = again.Close()
}
