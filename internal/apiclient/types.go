package apiclient

import (
	"mediastudio/internal/telemetry"
)

// SystemStats is the admin overview returned by /api/admin/stats.
type SystemStats struct {
	Uptime            string            `json:"uptime"`
	TotalRequests     int               `json:"total_requests"`
	ActiveConnections int               `json:"active_connections"`
	RecentEvents      []telemetry.Event `json:"recent_events"`
	AIPipelineStats   PipelineStats     `json:"ai_pipeline_stats"`
}

// PipelineStats aggregates processing counters for the voice pipeline.
type PipelineStats struct {
	TotalProcessed    int     `json:"total_processed"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
	SuccessRate       float64 `json:"success_rate"`
	MostCommonIntent  string  `json:"most_common_intent"`
}

// ComponentStatus is the health of a single pipeline node or service.
type ComponentStatus struct {
	Status string `json:"status"`
}

// PipelineStatus maps pipeline nodes and external services to their health.
type PipelineStatus struct {
	Components       map[string]ComponentStatus `json:"components"`
	ExternalServices map[string]ComponentStatus `json:"external_services"`
}

// TextRequest is the body of /api/voice/process-text.
type TextRequest struct {
	Text     string `json:"text"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

// VoiceResponse is returned by both voice endpoints.
type VoiceResponse struct {
	Success         bool    `json:"success"`
	TranscribedText string  `json:"transcribed_text,omitempty"`
	Intent          string  `json:"intent,omitempty"`
	Response        string  `json:"response"`
	AudioURL        string  `json:"audio_url,omitempty"`
	ProcessingTime  float64 `json:"processing_time"`
	Error           string  `json:"error,omitempty"`
}

// Article is a single personalized feed entry.
type Article struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	Source              string  `json:"source"`
	Category            string  `json:"category"`
	RecommendationScore float64 `json:"recommendation_score"`
	IsExploratory       bool    `json:"is_exploratory"`
	Excerpt             string  `json:"excerpt,omitempty"`
	Image               string  `json:"image,omitempty"`
}

// FeedResponse is returned by /api/feed.
type FeedResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Feed    []Article `json:"feed"`
}

// ClickEvent is the body of /api/feed/track-click.
type ClickEvent struct {
	UserID          string  `json:"user_id"`
	ArticleID       string  `json:"article_id"`
	Action          string  `json:"action"`
	ReadTimeSeconds int     `json:"read_time_seconds"`
	ScrollDepth     float64 `json:"scroll_depth"`
}

// StatusResponse is the generic acknowledgement shape used by write endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ContentRequest is the body of /api/social/generate-content.
type ContentRequest struct {
	BrandID      string   `json:"brand_id"`
	Topic        string   `json:"topic"`
	Platforms    []string `json:"platforms"`
	CampaignGoal string   `json:"campaign_goal"`
}

// PlatformContent is the generated post for a single platform.
type PlatformContent struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
	Status   string   `json:"status"`
}

// ContentPackage groups generated posts by platform.
type ContentPackage struct {
	Topic     string                     `json:"topic"`
	Platforms map[string]PlatformContent `json:"platforms"`
}

// ContentResponse is returned by /api/social/generate-content.
type ContentResponse struct {
	Status         string         `json:"status"`
	Message        string         `json:"message,omitempty"`
	ContentPackage ContentPackage `json:"content_package"`
}

// Scene is a detected time range in an analyzed video.
type Scene struct {
	ID         string  `json:"id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Type       string  `json:"type"`
	Importance float64 `json:"importance"`
}

// Caption is a generated subtitle line.
type Caption struct {
	ID         string  `json:"id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Thumbnail is a generated thumbnail variant.
type Thumbnail struct {
	VariantID    string  `json:"variant_id"`
	Style        string  `json:"style"`
	CTRPotential float64 `json:"ctr_potential"`
	HasText      bool    `json:"has_text"`
}

// Video is the record returned by /api/videos/upload.
type Video struct {
	VideoID    string      `json:"video_id"`
	Filename   string      `json:"filename"`
	Scenes     []Scene     `json:"scenes"`
	Captions   []Caption   `json:"captions"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// UploadResponse is returned by /api/videos/upload.
type UploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Video   *Video `json:"video"`
}

// AnalyzeRequest is the body of /api/videos/analyze.
type AnalyzeRequest struct {
	VideoID            string `json:"video_id"`
	AnalyzeScenes      bool   `json:"analyze_scenes"`
	GenerateCaptions   bool   `json:"generate_captions"`
	GenerateThumbnails bool   `json:"generate_thumbnails"`
}

// Analysis is the scene, caption, and thumbnail output for a video.
type Analysis struct {
	Scenes     []Scene     `json:"scenes"`
	Captions   []Caption   `json:"captions"`
	Thumbnails []Thumbnail `json:"thumbnails"`
	Duration   float64     `json:"duration"`
}

// AnalyzeResponse is returned by /api/videos/analyze.
type AnalyzeResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Analysis *Analysis `json:"analysis"`
}

// ExportRequest is the body of /api/videos/export.
type ExportRequest struct {
	VideoID             string   `json:"video_id"`
	Platforms           []string `json:"platforms"`
	IncludeCaptions     bool     `json:"include_captions"`
	AutoSelectThumbnail bool     `json:"auto_select_thumbnail"`
}

// ExportResponse is returned by /api/videos/export.
type ExportResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// Upload is a file submitted as a multipart form part.
type Upload struct {
	Filename string
	Content  []byte
}
