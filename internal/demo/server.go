package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/logging"
	"mediastudio/internal/telemetry"
)

const (
	defaultInterval  = 2 * time.Second
	maxUploadBytes   = 256 << 20
	recentEventLimit = 20
)

var videoExtensions = map[string]bool{".mp4": true, ".webm": true, ".avi": true, ".mov": true, ".mkv": true}

// Options configures a Server.
type Options struct {
	// EventInterval is how often Run emits a telemetry event.
	EventInterval time.Duration
	Logger        *slog.Logger
	// Now overrides the wall clock for deterministic responses.
	Now func() time.Time
}

// Server implements the backend API with fixtures.
type Server struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	started  time.Time
	router   chi.Router
	hub      *hub
	recent   *telemetry.Buffer
	requests atomic.Int64
	seq      atomic.Int64

	mu     sync.Mutex
	videos map[string]string
	clicks []apiclient.ClickEvent
}

// NewServer builds the demo router.
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.EventInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	s := &Server{
		logger:   logging.NewComponentLogger(opts.Logger, "demo"),
		interval: interval,
		now:      now,
		started:  now(),
		hub:      newHub(),
		recent:   telemetry.NewBuffer(recentEventLimit),
		videos:   map[string]string{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", s.handleStats)
			r.Get("/pipeline-status", s.handlePipelineStatus)
			r.Post("/trigger-test-event", s.handleTriggerTestEvent)
		})
		r.Route("/voice", func(r chi.Router) {
			r.Post("/process-text", s.handleProcessText)
			r.Post("/process-audio", s.handleProcessAudio)
		})
		r.Get("/feed", s.handleFeed)
		r.Post("/feed/track-click", s.handleTrackClick)
		r.Post("/social/generate-content", s.handleGenerateContent)
		r.Route("/videos", func(r chi.Router) {
			r.Post("/upload", s.handleUpload)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/export", s.handleExport)
		})
	})
	r.Handle("/ws/telemetry", websocket.Server{Handler: s.handleTelemetry})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Broadcast records an event and pushes it to every telemetry subscriber.
func (s *Server) Broadcast(event telemetry.Event) {
	if event.Timestamp == "" {
		event.Timestamp = s.timestamp()
	}
	s.recent.Push(event)
	s.hub.broadcast(event)
}

// Subscribers returns the number of connected telemetry clients.
func (s *Server) Subscribers() int {
	return s.hub.count()
}

// Clicks returns every tracked feed interaction.
func (s *Server) Clicks() []apiclient.ClickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.ClickEvent(nil), s.clicks...)
}

// Run emits the demo event cycle until ctx is done.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.hub.closeAll()
			return
		case <-ticker.C:
			step := cycle[int(s.seq.Add(1)-1)%len(cycle)]
			s.Broadcast(NewEvent(step.eventType, s.timestamp(), step.data))
		}
	}
}

// ListenAndServe serves on bind until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", bind, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(runCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	s.logger.Info("demo backend listening", logging.String("bind", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.hub.closeAll()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown demo backend: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			logging.String("method", r.Method),
			logging.String(logging.FieldEndpoint, r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldCorrelationID, r.Header.Get("X-Request-ID")),
		)
	})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "studio demo backend"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := FallbackStats(s.started)
	stats.TotalRequests = int(s.requests.Load())
	stats.ActiveConnections = s.hub.count()
	stats.RecentEvents = s.recent.Snapshot()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePipelineStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FallbackPipelineStatus())
}

func (s *Server) handleTriggerTestEvent(w http.ResponseWriter, _ *http.Request) {
	s.Broadcast(NewEvent("test_event", s.timestamp(), map[string]any{"source": "admin"}))
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "test event broadcast"})
}

func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	var req apiclient.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	writeJSON(w, http.StatusOK, s.voiceReply(req.UserID, text, ""))
}

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "audio file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "audio file is empty")
		return
	}
	transcript := fmt.Sprintf("audio clip (%d bytes)", len(data))
	writeJSON(w, http.StatusOK, s.voiceReply(r.FormValue("user_id"), "", transcript))
}

func (s *Server) voiceReply(userID, text, transcript string) apiclient.VoiceResponse {
	s.Broadcast(NewEvent("voice_processing_started", s.timestamp(), map[string]any{"user_id": userID}))
	heard := text
	if heard == "" {
		heard = transcript
	}
	intent := "general_query"
	lowered := strings.ToLower(heard)
	switch {
	case strings.Contains(lowered, "hello"), strings.Contains(lowered, "namaste"):
		intent = "greeting"
	case strings.Contains(lowered, "scam"), strings.Contains(lowered, "fraud"):
		intent = "threat_report"
	}
	s.Broadcast(NewEvent("node_intent_router_completed", s.timestamp(), map[string]any{"intent": intent}))
	return apiclient.VoiceResponse{
		Success:         true,
		TranscribedText: transcript,
		Intent:          intent,
		Response:        "You said: " + heard,
		ProcessingTime:  0.4,
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	articles := Articles()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}
		if limit < len(articles) {
			articles = articles[:limit]
		}
	}
	writeJSON(w, http.StatusOK, apiclient.FeedResponse{Status: "success", Feed: articles})
}

func (s *Server) handleTrackClick(w http.ResponseWriter, r *http.Request) {
	var click apiclient.ClickEvent
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil || click.ArticleID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "article_id is required")
		return
	}
	s.mu.Lock()
	s.clicks = append(s.clicks, click)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, apiclient.StatusResponse{Status: "success", Message: "interaction recorded"})
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req apiclient.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.BrandID) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "brand_id and topic are required")
		return
	}
	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = []string{"instagram"}
	}
	writeJSON(w, http.StatusOK, apiclient.ContentResponse{
		Status:         "success",
		ContentPackage: ContentPackage(strings.TrimSpace(req.Topic), platforms),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	if !videoExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		writeJSON(w, http.StatusOK, apiclient.UploadResponse{Status: "error", Message: "Unsupported video format"})
		return
	}

	videoID := uuid.NewString()
	s.mu.Lock()
	s.videos[videoID] = header.Filename
	s.mu.Unlock()
	s.Broadcast(NewEvent("video_uploaded", s.timestamp(), map[string]any{"video_id": videoID}))
	writeJSON(w, http.StatusOK, apiclient.UploadResponse{
		Status:  "success",
		Message: "Video uploaded",
		Video: &apiclient.Video{
			VideoID:    videoID,
			Filename:   header.Filename,
			Scenes:     []apiclient.Scene{},
			Captions:   []apiclient.Caption{},
			Thumbnails: []apiclient.Thumbnail{},
		},
	})
}

func (s *Server) knownVideo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.videos[id]
	return ok
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apiclient.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if !s.knownVideo(req.VideoID) {
		writeDetail(w, http.StatusNotFound, "video not found")
		return
	}
	analysis := Analysis()
	s.Broadcast(NewEvent("video_analyzed", s.timestamp(), map[string]any{"video_id": req.VideoID, "scenes": len(analysis.Scenes)}))
	writeJSON(w, http.StatusOK, apiclient.AnalyzeResponse{Status: "success", Analysis: &analysis})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req apiclient.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if !s.knownVideo(req.VideoID) {
		writeDetail(w, http.StatusNotFound, "video not found")
		return
	}
	if len(req.Platforms) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "at least one platform is required")
		return
	}
	jobID := uuid.NewString()
	s.Broadcast(NewEvent("video_export_queued", s.timestamp(), map[string]any{"video_id": req.VideoID, "platforms": req.Platforms}))
	writeJSON(w, http.StatusOK, apiclient.ExportResponse{
		Status:  "processing",
		Message: fmt.Sprintf("Export queued for %d platform(s)", len(req.Platforms)),
		JobID:   jobID,
	})
}

func (s *Server) handleTelemetry(conn *websocket.Conn) {
	id, frames := s.hub.subscribe()
	defer s.hub.unsubscribe(id)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		var discard []byte
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				_ = conn.Close()
				return
			}
			if err := websocket.Message.Send(conn, string(frame)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
