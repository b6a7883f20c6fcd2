package demo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/telemetry"
)

// FallbackStats is the admin overview shown when demo mode substitutes an
// unreachable backend.
func FallbackStats(now time.Time) apiclient.SystemStats {
	return apiclient.SystemStats{
		Uptime:            now.UTC().Format(time.RFC3339),
		TotalRequests:     156,
		ActiveConnections: 3,
		RecentEvents:      []telemetry.Event{},
		AIPipelineStats: apiclient.PipelineStats{
			TotalProcessed:    42,
			AvgProcessingTime: 1.2,
			SuccessRate:       0.95,
			MostCommonIntent:  "cybersecurity_education",
		},
	}
}

// FallbackPipelineStatus is the pipeline health shown in demo mode.
func FallbackPipelineStatus() apiclient.PipelineStatus {
	return apiclient.PipelineStatus{
		Components: map[string]apiclient.ComponentStatus{
			"safety_check":      {Status: "healthy"},
			"intent_router":     {Status: "healthy"},
			"retrieve_context":  {Status: "degraded"},
			"generate_response": {Status: "healthy"},
			"post_process":      {Status: "healthy"},
		},
		ExternalServices: map[string]apiclient.ComponentStatus{
			"vector_db":   {Status: "mock"},
			"redis_cache": {Status: "mock"},
			"stt_service": {Status: "mock"},
			"tts_service": {Status: "mock"},
		},
	}
}

// FallbackEvents is the canned telemetry shown when the stream is unavailable
// in demo mode, newest first.
func FallbackEvents(now time.Time) []telemetry.Event {
	ts := now.UTC().Format(time.RFC3339)
	return []telemetry.Event{
		NewEvent("node_intent_router_completed", ts, map[string]any{"intent": "cybersecurity_education"}),
		NewEvent("node_safety_check_completed", ts, map[string]any{"status": "safe"}),
		NewEvent("voice_processing_started", ts, map[string]any{"user_id": "user123"}),
	}
}

// NewEvent builds a telemetry event with a JSON payload.
func NewEvent(eventType, timestamp string, data map[string]any) telemetry.Event {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err == nil {
			raw = encoded
		}
	}
	return telemetry.Event{Type: eventType, Timestamp: timestamp, Data: raw}
}

// cycle is the sequence the periodic emitter walks through.
var cycle = []struct {
	eventType string
	data      map[string]any
}{
	{"voice_processing_started", map[string]any{"user_id": "user123"}},
	{"node_safety_check_completed", map[string]any{"status": "safe"}},
	{"node_intent_router_completed", map[string]any{"intent": "cybersecurity_education"}},
	{"node_retrieve_context_completed", map[string]any{"documents": 3}},
	{"node_generate_response_completed", map[string]any{"tokens": 128}},
	{"voice_processing_completed", map[string]any{"processing_time": 1.2}},
}

// Articles is the demo feed.
func Articles() []apiclient.Article {
	return []apiclient.Article{
		{
			ID: "art-001", Title: "Chip makers race to ship on-device AI", Source: "Tech Daily",
			Category: "Technology", RecommendationScore: 0.92,
			Excerpt: `<p>Phone makers are moving <b>speech recognition</b> onto the handset.</p><script>alert(1)</script>`,
		},
		{
			ID: "art-002", Title: "Regional lenders expand digital payments", Source: "Market Wire",
			Category: "Business", RecommendationScore: 0.81,
			Excerpt: `Small banks report <i>record</i> UPI volumes this quarter.`,
		},
		{
			ID: "art-003", Title: "Monsoon season and water-borne illness", Source: "Health Now",
			Category: "Health", RecommendationScore: 0.74, IsExploratory: true,
			Excerpt: `Doctors urge boiling drinking water <a href="javascript:void(0)">read more</a>`,
		},
		{
			ID: "art-004", Title: "Satellite data maps crop stress", Source: "Science Today",
			Category: "Science", RecommendationScore: 0.68,
			Excerpt: "Researchers combine radar and optical imagery to track drought.",
		},
		{
			ID: "art-005", Title: "Open-source models close the gap", Source: "Tech Daily",
			Category: "Technology", RecommendationScore: 0.63, IsExploratory: true,
			Excerpt: "Community benchmarks show smaller models catching up.",
		},
	}
}

// ContentPackage generates posts for each requested platform.
func ContentPackage(topic string, platforms []string) apiclient.ContentPackage {
	pkg := apiclient.ContentPackage{Topic: topic, Platforms: map[string]apiclient.PlatformContent{}}
	tag := "#" + strings.ReplaceAll(cases.Title(language.English).String(strings.ToLower(topic)), " ", "")
	for _, platform := range platforms {
		caption := fmt.Sprintf("%s: what it means for you.", topic)
		switch platform {
		case "linkedin":
			caption = fmt.Sprintf("Three takeaways on %s for leaders.", topic)
		case "twitter", "x":
			caption = fmt.Sprintf("%s, in one thread.", topic)
		case "instagram":
			caption = fmt.Sprintf("%s, explained in 30 seconds.", topic)
		}
		pkg.Platforms[platform] = apiclient.PlatformContent{
			Caption:  caption,
			Hashtags: []string{tag, "#" + platform},
			Status:   "draft",
		}
	}
	return pkg
}

// Analysis is the deterministic analysis returned for every uploaded video.
func Analysis() apiclient.Analysis {
	return apiclient.Analysis{
		Scenes: []apiclient.Scene{
			{ID: "scene-1", StartTime: 0, EndTime: 6.5, Type: "talking_head", Importance: 0.91},
			{ID: "scene-2", StartTime: 6.5, EndTime: 14, Type: "b_roll", Importance: 0.55},
			{ID: "scene-3", StartTime: 14, EndTime: 22.5, Type: "talking_head", Importance: 0.78},
			{ID: "scene-4", StartTime: 22.5, EndTime: 30, Type: "call_to_action", Importance: 0.83},
		},
		Captions: []apiclient.Caption{
			{ID: "cap-1", StartTime: 0, EndTime: 3.2, Text: "Welcome back to the channel.", Confidence: 0.97},
			{ID: "cap-2", StartTime: 3.2, EndTime: 6.5, Text: "Today we look at on-device AI.", Confidence: 0.93},
			{ID: "cap-3", StartTime: 22.5, EndTime: 30, Text: "Follow for more.", Confidence: 0.88},
		},
		Thumbnails: []apiclient.Thumbnail{
			{VariantID: "thumb-a", Style: "bold_text", CTRPotential: 0.74, HasText: true},
			{VariantID: "thumb-b", Style: "face_closeup", CTRPotential: 0.69, HasText: false},
			{VariantID: "thumb-c", Style: "minimal", CTRPotential: 0.52, HasText: false},
		},
		Duration: 30,
	}
}
