package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

var (
	// ErrBusy is returned when an action is attempted while another remote
	// call is in flight.
	ErrBusy = errors.New("wizard: another action is in progress")
	// ErrNoPlatforms is returned by Export when no platform is selected.
	ErrNoPlatforms = fmt.Errorf("%w: select at least one platform", services.ErrValidation)
	// ErrWrongStep is returned when an action does not belong to the current step.
	ErrWrongStep = errors.New("wizard: action not available on current step")
	// ErrStepLocked is returned by GoTo for steps that cannot be revisited.
	ErrStepLocked = errors.New("wizard: step not completed")
)

// AllowedExtensions lists the accepted video containers.
var AllowedExtensions = []string{".mp4", ".webm", ".avi", ".mov", ".mkv"}

// VideoService is the subset of the API client the wizard drives.
type VideoService interface {
	UploadVideo(ctx context.Context, file apiclient.Upload) apiclient.Envelope[apiclient.UploadResponse]
	AnalyzeVideo(ctx context.Context, videoID string) apiclient.Envelope[apiclient.AnalyzeResponse]
	ExportVideo(ctx context.Context, videoID string, platforms []string) apiclient.Envelope[apiclient.ExportResponse]
}

// Session is the in-memory state of one workflow run.
type Session struct {
	ID         string
	Step       Step
	VideoID    string
	Filename   string
	Duration   float64
	Scenes     []apiclient.Scene
	Captions   []apiclient.Caption
	Thumbnails []apiclient.Thumbnail

	Platforms    []string
	ExportStatus string
}

// Wizard drives one Session through the workflow.
type Wizard struct {
	svc    VideoService
	logger *slog.Logger

	mu       sync.Mutex
	session  Session
	furthest Step
	loading  bool
	errMsg   string
	exported bool
}

// Option customizes a Wizard.
type Option func(*Wizard)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// New returns a Wizard positioned on the upload step.
func New(svc VideoService, opts ...Option) *Wizard {
	w := &Wizard{
		svc:      svc,
		session:  Session{ID: uuid.NewString(), Step: StepUpload},
		furthest: StepUpload,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "wizard")
	return w
}

// Session returns a copy of the current session.
func (w *Wizard) Session() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.session
	s.Scenes = append([]apiclient.Scene(nil), s.Scenes...)
	s.Captions = append([]apiclient.Caption(nil), s.Captions...)
	s.Thumbnails = append([]apiclient.Thumbnail(nil), s.Thumbnails...)
	s.Platforms = append([]string(nil), s.Platforms...)
	return s
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Step
}

// Loading reports whether a remote call is in flight.
func (w *Wizard) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Error returns the current error banner, if any.
func (w *Wizard) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// DismissError clears the error banner.
func (w *Wizard) DismissError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = ""
}

// Exported reports whether the export request was accepted.
func (w *Wizard) Exported() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exported
}

// Completed reports whether step lies before the furthest step reached.
func (w *Wizard) Completed(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completedLocked(step)
}

func (w *Wizard) completedLocked(step Step) bool {
	if step == StepExport {
		return w.exported
	}
	idx := step.index()
	return idx >= 0 && idx < w.furthest.index()
}

// Upload validates and submits a video file. On success the session holds
// the new video and the wizard moves to analyze.
func (w *Wizard) Upload(ctx context.Context, file apiclient.Upload) error {
	if err := validateUpload(file); err != nil {
		w.mu.Lock()
		w.errMsg = err.Error()
		w.mu.Unlock()
		return err
	}
	if err := w.begin(StepUpload); err != nil {
		return err
	}

	ctx = services.WithStep(ctx, string(StepUpload))
	env := w.svc.UploadVideo(ctx, file)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if !env.Success {
		return w.failLocked(ctx, StepUpload, env.Error, env.Err)
	}
	if env.Data == nil || env.Data.Video == nil {
		return w.failLocked(ctx, StepUpload, "Upload failed: Invalid response", nil)
	}
	video := env.Data.Video
	w.session = Session{
		ID:         w.session.ID,
		Step:       StepAnalyze,
		VideoID:    video.VideoID,
		Filename:   firstNonEmpty(video.Filename, filepath.Base(file.Filename)),
		Scenes:     video.Scenes,
		Captions:   video.Captions,
		Thumbnails: video.Thumbnails,
	}
	w.furthest = StepAnalyze
	w.exported = false
	w.logger.Info("video uploaded",
		logging.String(logging.FieldStep, string(StepUpload)),
		logging.String("video_id", video.VideoID),
	)
	return nil
}

// Analyze requests analysis for the stored video. On success the session's
// scenes, captions, and thumbnails are replaced and the wizard moves to edit.
func (w *Wizard) Analyze(ctx context.Context) error {
	if err := w.begin(StepAnalyze); err != nil {
		return err
	}
	w.mu.Lock()
	videoID := w.session.VideoID
	w.mu.Unlock()

	ctx = services.WithStep(ctx, string(StepAnalyze))
	env := w.svc.AnalyzeVideo(ctx, videoID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if !env.Success {
		return w.failLocked(ctx, StepAnalyze, env.Error, env.Err)
	}
	if env.Data == nil || env.Data.Analysis == nil {
		return w.failLocked(ctx, StepAnalyze, "Analysis failed: Invalid response", nil)
	}
	analysis := env.Data.Analysis
	w.session.Scenes = analysis.Scenes
	w.session.Captions = analysis.Captions
	w.session.Thumbnails = analysis.Thumbnails
	w.session.Duration = analysis.Duration
	w.session.Step = StepEdit
	w.furthest = StepEdit
	w.logger.Info("video analyzed",
		logging.String(logging.FieldStep, string(StepAnalyze)),
		logging.Int("scenes", len(analysis.Scenes)),
		logging.Int("captions", len(analysis.Captions)),
	)
	return nil
}

// ProceedToExport moves from edit to export. It makes no remote call.
func (w *Wizard) ProceedToExport() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrBusy
	}
	if w.session.Step != StepEdit {
		return fmt.Errorf("%w: proceed requires %s, current step is %s", ErrWrongStep, StepEdit, w.session.Step)
	}
	w.session.Step = StepExport
	w.furthest = StepExport
	return nil
}

// Export submits the export request for the selected platforms. A response
// of "processing" or "success" completes the flow; the render itself is not
// awaited.
func (w *Wizard) Export(ctx context.Context, platforms []string) error {
	selected, err := normalizePlatforms(platforms)
	if err != nil {
		return err
	}
	if err := w.begin(StepExport); err != nil {
		return err
	}
	w.mu.Lock()
	videoID := w.session.VideoID
	w.mu.Unlock()

	ctx = services.WithStep(ctx, string(StepExport))
	env := w.svc.ExportVideo(ctx, videoID, selected)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if !env.Success {
		return w.failLocked(ctx, StepExport, env.Error, env.Err)
	}
	w.session.Platforms = selected
	if env.Data != nil {
		w.session.ExportStatus = env.Data.Status
	}
	w.exported = true
	w.logger.Info("export requested",
		logging.String(logging.FieldStep, string(StepExport)),
		logging.String("status", w.session.ExportStatus),
		logging.String("platforms", strings.Join(selected, ",")),
	)
	return nil
}

// GoTo revisits a completed step strictly before the current one.
func (w *Wizard) GoTo(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrBusy
	}
	if step.index() < 0 {
		return fmt.Errorf("%w: unknown step %q", services.ErrValidation, step)
	}
	if step.index() >= w.session.Step.index() || !w.completedLocked(step) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrStepLocked, w.session.Step, step)
	}
	w.session.Step = step
	return nil
}

// begin claims the in-flight slot for an action on step.
func (w *Wizard) begin(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrBusy
	}
	if w.session.Step != step {
		return fmt.Errorf("%w: %s requires step %s, current step is %s", ErrWrongStep, step, step, w.session.Step)
	}
	if step != StepUpload && w.session.VideoID == "" {
		return fmt.Errorf("%w: no video uploaded", ErrWrongStep)
	}
	w.loading = true
	w.errMsg = ""
	return nil
}

func (w *Wizard) failLocked(ctx context.Context, step Step, message string, cause error) error {
	if message == "" {
		message = fmt.Sprintf("%s failed", step.Label())
	}
	w.errMsg = message
	logging.WithContext(ctx, w.logger).Warn("wizard step failed",
		logging.String("message", message),
		logging.String("category", string(services.Classify(cause))),
	)
	if cause != nil {
		return fmt.Errorf("%s: %w", step, cause)
	}
	return fmt.Errorf("%s: %s", step, message)
}

func validateUpload(file apiclient.Upload) error {
	name := strings.TrimSpace(file.Filename)
	if name == "" || len(file.Content) == 0 {
		return fmt.Errorf("%w: select a non-empty video file", services.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported file type %q", services.ErrValidation, ext)
}

func normalizePlatforms(platforms []string) ([]string, error) {
	seen := make(map[string]struct{}, len(platforms))
	selected := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		platform = strings.ToLower(strings.TrimSpace(platform))
		if platform == "" {
			continue
		}
		if !isKnownPlatform(platform) {
			return nil, fmt.Errorf("%w: unsupported platform %q", services.ErrValidation, platform)
		}
		if _, ok := seen[platform]; ok {
			continue
		}
		seen[platform] = struct{}{}
		selected = append(selected, platform)
	}
	if len(selected) == 0 {
		return nil, ErrNoPlatforms
	}
	return selected, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
