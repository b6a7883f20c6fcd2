package voice_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/clock"
	"mediastudio/internal/services"
	"mediastudio/internal/voice"
)

type fakeClient struct {
	mu      sync.Mutex
	healthy bool
	text    apiclient.Envelope[apiclient.VoiceResponse]
	audio   apiclient.Envelope[apiclient.VoiceResponse]

	texts  []string
	clips  []apiclient.Upload
	probes int
}

func (f *fakeClient) Health(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.healthy
}

func (f *fakeClient) ProcessText(ctx context.Context, text, userID, language string) apiclient.Envelope[apiclient.VoiceResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.text
}

func (f *fakeClient) ProcessAudio(ctx context.Context, audio apiclient.Upload, userID string) apiclient.Envelope[apiclient.VoiceResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clips = append(f.clips, audio)
	return f.audio
}

func (f *fakeClient) clipCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clips)
}

type fakeDevice struct {
	mu       sync.Mutex
	startErr error
	content  []byte
	started  bool
	released int
}

func (d *fakeDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	return nil
}

func (d *fakeDevice) Finish() (apiclient.Upload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return apiclient.Upload{Content: d.content}, nil
}

func (d *fakeDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
	return nil
}

func (d *fakeDevice) releaseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

func success(response string) apiclient.Envelope[apiclient.VoiceResponse] {
	return apiclient.Envelope[apiclient.VoiceResponse]{
		Success: true,
		Data: &apiclient.VoiceResponse{
			Success:         true,
			TranscribedText: "spoken words",
			Intent:          "greeting",
			Response:        response,
			ProcessingTime:  1.2,
		},
	}
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

func TestSubmitTextAppendsHistory(t *testing.T) {
	client := &fakeClient{healthy: true, text: success("Namaste!")}
	var recorded []voice.Turn
	a := voice.NewAssistant(client, voice.Config{
		UserID: "voice_ui_user",
		Clock:  clock.NewFake(time.Unix(100, 0)),
		OnTurn: func(turn voice.Turn) { recorded = append(recorded, turn) },
	})

	if err := a.SubmitText(context.Background(), "  hello  "); err != nil {
		t.Fatalf("SubmitText returned error: %v", err)
	}
	state := a.State()
	if state.CurrentText != "hello" || state.Response != "Namaste!" || state.Processing {
		t.Fatalf("unexpected state %+v", state)
	}
	history := a.History()
	if len(history) != 2 || history[0].Role != voice.RoleUser || history[1].Role != voice.RoleAssistant {
		t.Fatalf("unexpected history %+v", history)
	}
	if history[1].Intent != "greeting" || history[1].ProcessingTime != 1.2 {
		t.Fatalf("assistant turn missing metadata: %+v", history[1])
	}
	if !history[0].At.Equal(time.Unix(100, 0)) {
		t.Fatalf("expected clock timestamp, got %s", history[0].At)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected OnTurn for both turns, got %d", len(recorded))
	}
}

func TestSubmitTextRejectsBlankInput(t *testing.T) {
	client := &fakeClient{healthy: true}
	a := voice.NewAssistant(client, voice.Config{})
	if err := a.SubmitText(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(client.texts) != 0 {
		t.Fatal("blank input must not reach the backend")
	}
}

func TestEmptyResponseUsesFallback(t *testing.T) {
	client := &fakeClient{healthy: true, text: success("")}
	a := voice.NewAssistant(client, voice.Config{})
	if err := a.SubmitText(context.Background(), "kya haal hai"); err != nil {
		t.Fatalf("SubmitText returned error: %v", err)
	}
	if a.State().Response != voice.FallbackResponse {
		t.Fatalf("expected fallback response, got %q", a.State().Response)
	}
}

func TestFailureSurfacesError(t *testing.T) {
	client := &fakeClient{healthy: true, text: apiclient.Envelope[apiclient.VoiceResponse]{Error: "server error: 502 Bad Gateway"}}
	a := voice.NewAssistant(client, voice.Config{})
	if err := a.SubmitText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	if a.State().Error != "server error: 502 Bad Gateway" {
		t.Fatalf("unexpected error banner %q", a.State().Error)
	}
	if len(a.History()) != 0 {
		t.Fatal("failed requests must not be added to history")
	}

	client.text = apiclient.Envelope[apiclient.VoiceResponse]{}
	_ = a.SubmitText(context.Background(), "hello")
	if a.State().Error != "Processing failed. Please try again." {
		t.Fatalf("expected fallback error, got %q", a.State().Error)
	}
	a.ClearError()
	if a.State().Error != "" {
		t.Fatal("expected error cleared")
	}
}

func TestCheckConnectionRecordsState(t *testing.T) {
	client := &fakeClient{healthy: false}
	a := voice.NewAssistant(client, voice.Config{})
	if a.CheckConnection(context.Background()) {
		t.Fatal("expected unhealthy")
	}
	state := a.State()
	if state.Connected || state.Error == "" {
		t.Fatalf("expected disconnected state with error, got %+v", state)
	}
}

func TestRecordAutoStopsAfterLimitAndReleasesDevice(t *testing.T) {
	client := &fakeClient{healthy: true, audio: success("heard you")}
	fake := clock.NewFake(time.Unix(0, 0))
	a := voice.NewAssistant(client, voice.Config{Clock: fake, MaxRecord: 30 * time.Second})
	device := &fakeDevice{content: []byte("opus")}

	done := make(chan error, 1)
	go func() { done <- a.Record(context.Background(), device) }()

	waitFor(t, "recording started", func() bool { return a.State().Listening && fake.Pending() == 1 })
	fake.Advance(29 * time.Second)
	if !a.State().Listening {
		t.Fatal("recording stopped before limit")
	}
	fake.Advance(time.Second)

	if err := <-done; err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if device.releaseCount() != 1 {
		t.Fatalf("expected device released once, got %d", device.releaseCount())
	}
	if client.clipCount() != 1 || client.clips[0].Filename != "recording.webm" {
		t.Fatalf("expected clip submitted as recording.webm, got %+v", client.clips)
	}
	history := a.History()
	if len(history) != 2 || history[0].Text != "spoken words" {
		t.Fatalf("expected transcribed text as user turn, got %+v", history)
	}
	if a.State().Listening {
		t.Fatal("expected listening cleared")
	}
}

func TestRecordStopsOnUserAction(t *testing.T) {
	client := &fakeClient{healthy: true, audio: success("ok")}
	fake := clock.NewFake(time.Unix(0, 0))
	a := voice.NewAssistant(client, voice.Config{Clock: fake})
	device := &fakeDevice{content: []byte("opus")}

	done := make(chan error, 1)
	go func() { done <- a.Record(context.Background(), device) }()
	waitFor(t, "recording started", func() bool { return a.State().Listening && fake.Pending() == 1 })

	if !a.Stop() {
		t.Fatal("expected Stop to end the recording")
	}
	if err := <-done; err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if fake.Pending() != 0 {
		t.Fatal("auto-stop timer should be cancelled after manual stop")
	}
	if device.releaseCount() != 1 {
		t.Fatalf("expected device released, got %d", device.releaseCount())
	}
	if a.Stop() {
		t.Fatal("Stop without an active recording should report false")
	}
}

func TestRecordCancellationReleasesWithoutSubmitting(t *testing.T) {
	client := &fakeClient{healthy: true, audio: success("ok")}
	fake := clock.NewFake(time.Unix(0, 0))
	a := voice.NewAssistant(client, voice.Config{Clock: fake})
	device := &fakeDevice{content: []byte("opus")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Record(ctx, device) }()
	waitFor(t, "recording started", func() bool { return a.State().Listening })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if device.releaseCount() != 1 {
		t.Fatalf("expected device released, got %d", device.releaseCount())
	}
	if client.clipCount() != 0 {
		t.Fatal("cancelled recording must not be submitted")
	}
}

func TestRecordDeviceFailureSurfacesMicrophoneError(t *testing.T) {
	client := &fakeClient{healthy: true}
	a := voice.NewAssistant(client, voice.Config{Clock: clock.NewFake(time.Unix(0, 0))})
	device := &fakeDevice{startErr: errors.New("permission denied")}

	if err := a.Record(context.Background(), device); err == nil {
		t.Fatal("expected start failure")
	}
	state := a.State()
	if state.Listening || state.Error == "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if device.releaseCount() != 1 {
		t.Fatal("device must be released after a failed start")
	}
}

func TestRecordRequiresConnection(t *testing.T) {
	client := &fakeClient{healthy: false}
	a := voice.NewAssistant(client, voice.Config{})
	device := &fakeDevice{content: []byte("x")}
	if err := a.Record(context.Background(), device); !errors.Is(err, voice.ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}
	if device.started {
		t.Fatal("device must not be acquired while disconnected")
	}
}

func TestFileDeviceLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	device := voice.NewFileDevice(path)
	if err := device.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	clip, err := device.Finish()
	if err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	if clip.Filename != "clip.wav" || string(clip.Content) != "RIFFdata" {
		t.Fatalf("unexpected clip %+v", clip)
	}
	if err := device.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if !device.Released() {
		t.Fatal("expected released")
	}
	if err := device.Release(); err != nil {
		t.Fatalf("second Release returned error: %v", err)
	}
}

func TestFileDeviceMissingFile(t *testing.T) {
	device := voice.NewFileDevice(filepath.Join(t.TempDir(), "missing.wav"))
	if err := device.Start(context.Background()); err == nil {
		t.Fatal("expected missing file error")
	}
}
