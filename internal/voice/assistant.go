package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/clock"
	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

const (
	defaultMaxRecord = 30 * time.Second
	defaultLanguage  = "hi"

	// FallbackResponse is shown when the backend answers without text.
	FallbackResponse = "मुझे समझ नहीं आया।"

	msgProcessingFailed = "Processing failed. Please try again."
	msgDisconnected     = "Unable to connect to backend. Please ensure the server is running."
	msgMicrophone       = "Microphone access denied. Please allow microphone access and try again."
	msgNoAudio          = "No audio captured. Please try again."
	msgAudioInput       = "Audio input"
)

var (
	// ErrBusy is returned when input arrives while another request is active.
	ErrBusy = errors.New("voice: assistant is busy")
	// ErrDisconnected is returned when recording is attempted without a
	// healthy backend.
	ErrDisconnected = errors.New("voice: backend unreachable")
)

// Client is the subset of the API client the assistant uses.
type Client interface {
	Health(ctx context.Context) bool
	ProcessText(ctx context.Context, text, userID, language string) apiclient.Envelope[apiclient.VoiceResponse]
	ProcessAudio(ctx context.Context, audio apiclient.Upload, userID string) apiclient.Envelope[apiclient.VoiceResponse]
}

// State is a snapshot of the assistant.
type State struct {
	Listening   bool
	Processing  bool
	Connected   bool
	CurrentText string
	Response    string
	Error       string
}

// Role identifies the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history.
type Turn struct {
	Role           Role
	Text           string
	Intent         string
	AudioURL       string
	ProcessingTime float64
	At             time.Time
}

// Config configures an Assistant.
type Config struct {
	UserID    string
	Language  string
	MaxRecord time.Duration
	Clock     clock.Clock
	Logger    *slog.Logger
	// OnTurn is invoked for every turn appended to the history.
	OnTurn func(Turn)
}

// Assistant is one voice conversation.
type Assistant struct {
	client    Client
	userID    string
	language  string
	maxRecord time.Duration
	clock     clock.Clock
	logger    *slog.Logger
	onTurn    func(Turn)

	mu      sync.Mutex
	state   State
	history []Turn
	stop    chan struct{}
}

// NewAssistant constructs an assistant bound to client.
func NewAssistant(client Client, cfg Config) *Assistant {
	a := &Assistant{
		client:    client,
		userID:    strings.TrimSpace(cfg.UserID),
		language:  strings.TrimSpace(cfg.Language),
		maxRecord: cfg.MaxRecord,
		clock:     cfg.Clock,
		logger:    logging.NewComponentLogger(cfg.Logger, "voice"),
		onTurn:    cfg.OnTurn,
	}
	if a.language == "" {
		a.language = defaultLanguage
	}
	if a.maxRecord <= 0 {
		a.maxRecord = defaultMaxRecord
	}
	if a.clock == nil {
		a.clock = clock.Real()
	}
	return a
}

// State returns a snapshot of the assistant.
func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History returns the conversation so far, oldest first.
func (a *Assistant) History() []Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Turn(nil), a.history...)
}

// ClearError dismisses the error banner.
func (a *Assistant) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Error = ""
}

// CheckConnection probes backend health and records the result.
func (a *Assistant) CheckConnection(ctx context.Context) bool {
	healthy := a.client.Health(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Connected = healthy
	if !healthy {
		a.state.Error = msgDisconnected
	}
	return healthy
}

// SubmitText sends typed input. Blank input is rejected without a request.
func (a *Assistant) SubmitText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: text input is empty", services.ErrValidation)
	}
	a.mu.Lock()
	if a.state.Processing || a.state.Listening {
		a.mu.Unlock()
		return ErrBusy
	}
	a.state.Processing = true
	a.state.CurrentText = text
	a.state.Error = ""
	a.mu.Unlock()

	env := a.client.ProcessText(ctx, text, a.userID, a.language)
	return a.handleResult(env, text)
}

// Stop ends an active recording. It reports whether a recording was stopped.
func (a *Assistant) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop == nil {
		return false
	}
	close(a.stop)
	a.stop = nil
	return true
}

// Record captures audio from device until Stop is called, the recording
// limit elapses, or ctx is cancelled. The device is released on every path
// before the clip is submitted. A cancelled recording is discarded.
func (a *Assistant) Record(ctx context.Context, device Device) error {
	a.mu.Lock()
	if a.state.Processing || a.state.Listening {
		a.mu.Unlock()
		return ErrBusy
	}
	connected := a.state.Connected
	a.mu.Unlock()

	if !connected && !a.CheckConnection(ctx) {
		return ErrDisconnected
	}

	a.mu.Lock()
	if a.state.Processing || a.state.Listening {
		a.mu.Unlock()
		return ErrBusy
	}
	stop := make(chan struct{})
	a.stop = stop
	a.state.Listening = true
	a.state.Error = ""
	a.mu.Unlock()

	if err := device.Start(ctx); err != nil {
		_ = device.Release()
		a.mu.Lock()
		a.stop = nil
		a.state.Listening = false
		a.state.Error = msgMicrophone
		a.mu.Unlock()
		a.logger.Warn("capture device unavailable", logging.Error(err))
		return fmt.Errorf("start capture: %w", err)
	}

	autoStop := a.clock.AfterFunc(a.maxRecord, func() {
		if a.Stop() {
			a.logger.Info("recording limit reached", logging.Duration("limit", a.maxRecord))
		}
	})

	select {
	case <-stop:
	case <-ctx.Done():
		a.Stop()
	}
	autoStop.Stop()

	clip, finishErr := device.Finish()
	if err := device.Release(); err != nil {
		a.logger.Warn("release capture device", logging.Error(err))
	}

	a.mu.Lock()
	a.state.Listening = false
	if ctx.Err() != nil {
		a.mu.Unlock()
		return ctx.Err()
	}
	if finishErr != nil || len(clip.Content) == 0 {
		a.state.Error = msgNoAudio
		a.mu.Unlock()
		if finishErr != nil {
			return fmt.Errorf("finish capture: %w", finishErr)
		}
		return fmt.Errorf("%w: no audio captured", services.ErrValidation)
	}
	a.state.Processing = true
	a.mu.Unlock()

	if clip.Filename == "" {
		clip.Filename = "recording.webm"
	}
	env := a.client.ProcessAudio(ctx, clip, a.userID)
	return a.handleResult(env, "")
}

func (a *Assistant) handleResult(env apiclient.Envelope[apiclient.VoiceResponse], input string) error {
	now := a.clock.Now()

	a.mu.Lock()
	a.state.Processing = false
	if !env.Success || env.Data == nil {
		message := firstNonEmpty(env.Error, msgProcessingFailed)
		a.state.Error = message
		a.mu.Unlock()
		a.logger.Warn("voice request failed", logging.String("message", message))
		if env.Err != nil {
			return env.Err
		}
		return errors.New(message)
	}

	result := env.Data
	userText := firstNonEmpty(input, result.TranscribedText, msgAudioInput)
	reply := firstNonEmpty(result.Response, FallbackResponse)
	a.state.CurrentText = userText
	a.state.Response = reply
	a.state.Error = ""
	turns := []Turn{
		{Role: RoleUser, Text: userText, At: now},
		{
			Role:           RoleAssistant,
			Text:           reply,
			Intent:         result.Intent,
			AudioURL:       result.AudioURL,
			ProcessingTime: result.ProcessingTime,
			At:             now,
		},
	}
	a.history = append(a.history, turns...)
	a.mu.Unlock()

	if a.onTurn != nil {
		for _, turn := range turns {
			a.onTurn(turn)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
