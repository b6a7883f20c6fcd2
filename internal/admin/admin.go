// Package admin assembles the operator overview from backend statistics and
// pipeline health.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/demo"
	"mediastudio/internal/logging"
	"mediastudio/internal/telemetry"
)

// Client is the subset of the API client the overview needs.
type Client interface {
	Stats(ctx context.Context) apiclient.Envelope[apiclient.SystemStats]
	PipelineStatus(ctx context.Context) apiclient.Envelope[apiclient.PipelineStatus]
	TriggerTestEvent(ctx context.Context) apiclient.Envelope[struct{}]
}

// Overview is the combined admin view. Demo is set when any part of it came
// from fixtures rather than the backend.
type Overview struct {
	Stats    apiclient.SystemStats
	Pipeline apiclient.PipelineStatus
	Demo     bool
}

// Entry is one row of a pipeline health table.
type Entry struct {
	Name   string
	Status string
}

// Service fetches admin data.
type Service struct {
	client   Client
	demoMode bool
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithDemoMode substitutes fixtures for failed fetches.
func WithDemoMode(enabled bool) Option {
	return func(s *Service) { s.demoMode = enabled }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used for fixture timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds an admin service.
func NewService(client Client, opts ...Option) *Service {
	s := &Service{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "admin")
	return s
}

// Overview fetches stats and pipeline status. Without demo mode the first
// failure is returned as-is.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview

	stats := s.client.Stats(ctx)
	switch {
	case stats.Success && stats.Data != nil:
		out.Stats = *stats.Data
	case s.demoMode:
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "stats unavailable, showing demo data", "admin_demo_fallback",
			logging.String("reason", stats.Error),
			logging.String(logging.FieldErrorHint, "start the backend or disable demo_mode"),
		)
		out.Stats = demo.FallbackStats(s.now())
		out.Stats.RecentEvents = demo.FallbackEvents(s.now())
		out.Demo = true
	default:
		return Overview{}, envelopeError("stats", stats.Error, stats.Err)
	}

	pipeline := s.client.PipelineStatus(ctx)
	switch {
	case pipeline.Success && pipeline.Data != nil:
		out.Pipeline = *pipeline.Data
	case s.demoMode:
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "pipeline status unavailable, showing demo data", "admin_demo_fallback",
			logging.String("reason", pipeline.Error),
		)
		out.Pipeline = demo.FallbackPipelineStatus()
		out.Demo = true
	default:
		return Overview{}, envelopeError("pipeline status", pipeline.Error, pipeline.Err)
	}
	return out, nil
}

// TriggerTestEvent asks the backend to broadcast a test event.
func (s *Service) TriggerTestEvent(ctx context.Context) bool {
	env := s.client.TriggerTestEvent(ctx)
	if !env.Success {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "trigger test event failed", "test_event_failed", logging.String("reason", env.Error))
	}
	return env.Success
}

// RecentEvents returns at most limit events from the overview, newest first.
func (o Overview) RecentEvents(limit int) []telemetry.Event {
	events := o.Stats.RecentEvents
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}

// SortedStatus flattens a status map into rows ordered by name.
func SortedStatus(statuses map[string]apiclient.ComponentStatus) []Entry {
	entries := make([]Entry, 0, len(statuses))
	for name, status := range statuses {
		entries = append(entries, Entry{Name: name, Status: status.Status})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Healthy reports whether every entry is "healthy" or "mock".
func Healthy(entries []Entry) bool {
	for _, entry := range entries {
		if entry.Status != "healthy" && entry.Status != "mock" {
			return false
		}
	}
	return true
}

func envelopeError(what, message string, cause error) error {
	if cause == nil {
		cause = errors.New(message)
	}
	return fmt.Errorf("fetch %s: %w", what, cause)
}
