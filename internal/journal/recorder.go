package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mediastudio/internal/logging"
	"mediastudio/internal/telemetry"
)

// ErrRecorderRunning is returned when another process holds the recorder lock.
var ErrRecorderRunning = errors.New("another telemetry recorder is already running")

// Recorder appends telemetry events to a Store while holding an exclusive
// lock on the journal directory.
type Recorder struct {
	store    *Store
	lock     *flock.Flock
	logger   *slog.Logger
	recorded atomic.Int64
	failed   atomic.Int64
}

// NewRecorder acquires the recorder lock next to the journal database.
func NewRecorder(store *Store, logger *slog.Logger) (*Recorder, error) {
	lockPath := filepath.Join(filepath.Dir(store.Path()), "recorder.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire recorder lock: %w", err)
	}
	if !ok {
		return nil, ErrRecorderRunning
	}
	return &Recorder{
		store:  store,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "journal"),
	}, nil
}

// Record stores event; failures are logged and counted, never returned, so it
// can be used directly as a telemetry OnEvent sink.
func (r *Recorder) Record(event telemetry.Event) {
	if err := r.store.RecordEvent(context.Background(), event); err != nil {
		r.failed.Add(1)
		r.logger.Warn("journal write failed",
			logging.String(logging.FieldEventType, event.Type),
			logging.Error(err),
		)
		return
	}
	r.recorded.Add(1)
}

// Recorded returns the number of events stored so far.
func (r *Recorder) Recorded() int64 {
	return r.recorded.Load()
}

// Failed returns the number of events that could not be stored.
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}

// Close releases the recorder lock.
func (r *Recorder) Close() error {
	if r == nil || r.lock == nil {
		return nil
	}
	return r.lock.Unlock()
}
