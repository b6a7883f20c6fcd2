package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mediastudio/internal/services"
)

const defaultLanguage = "hi"

// Stats fetches the admin overview counters.
func (c *Client) Stats(ctx context.Context) Envelope[SystemStats] {
	req, _ := jsonRequest("admin stats", http.MethodGet, "/api/admin/stats", nil)
	return call[SystemStats](ctx, c, req, nil)
}

// PipelineStatus fetches the health of pipeline nodes and external services.
func (c *Client) PipelineStatus(ctx context.Context) Envelope[PipelineStatus] {
	req, _ := jsonRequest("pipeline status", http.MethodGet, "/api/admin/pipeline-status", nil)
	return call[PipelineStatus](ctx, c, req, nil)
}

// TriggerTestEvent asks the backend to broadcast a synthetic telemetry event.
// Any 2xx response counts as success; the body is not inspected.
func (c *Client) TriggerTestEvent(ctx context.Context) Envelope[struct{}] {
	req, _ := jsonRequest("trigger test event", http.MethodPost, "/api/admin/trigger-test-event", nil)
	if _, err := c.send(ctx, req); err != nil {
		return transportFailure[struct{}](ctx, req.op, err)
	}
	return Envelope[struct{}]{Success: true, Data: &struct{}{}}
}

// ProcessText submits typed input to the voice pipeline.
func (c *Client) ProcessText(ctx context.Context, text, userID, language string) Envelope[VoiceResponse] {
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	req, err := jsonRequest("process text", http.MethodPost, "/api/voice/process-text", TextRequest{
		Text:     strings.TrimSpace(text),
		UserID:   userIDOrDefault(userID),
		Language: language,
	})
	if err != nil {
		return encodeFailure[VoiceResponse](req.op, err)
	}
	return call(ctx, c, req, voiceCheck)
}

// ProcessAudio submits a recorded clip to the voice pipeline.
func (c *Client) ProcessAudio(ctx context.Context, audio Upload, userID string) Envelope[VoiceResponse] {
	req, err := multipartRequest("process audio", "/api/voice/process-audio", "audio", audio,
		map[string]string{"user_id": userIDOrDefault(userID)})
	if err != nil {
		return encodeFailure[VoiceResponse](req.op, err)
	}
	return call(ctx, c, req, voiceCheck)
}

// Feed fetches the personalized article feed.
func (c *Client) Feed(ctx context.Context, userID string, limit int) Envelope[FeedResponse] {
	query := url.Values{}
	query.Set("user_id", userIDOrDefault(userID))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	req, _ := jsonRequest("feed", http.MethodGet, "/api/feed", nil)
	req.query = query
	return call(ctx, c, req, func(resp *FeedResponse) (string, error) {
		if resp.Status == "" {
			return resp.Message, nil
		}
		return statusCheck(resp.Status, resp.Message, "feed request failed", "success")
	})
}

// TrackClick records an interaction with a feed article.
func (c *Client) TrackClick(ctx context.Context, event ClickEvent) Envelope[StatusResponse] {
	event.UserID = userIDOrDefault(event.UserID)
	req, err := jsonRequest("track click", http.MethodPost, "/api/feed/track-click", event)
	if err != nil {
		return encodeFailure[StatusResponse](req.op, err)
	}
	return call(ctx, c, req, acknowledgementCheck)
}

// GenerateContent requests platform posts for a brand and topic.
func (c *Client) GenerateContent(ctx context.Context, content ContentRequest) Envelope[ContentResponse] {
	req, err := jsonRequest("generate content", http.MethodPost, "/api/social/generate-content", content)
	if err != nil {
		return encodeFailure[ContentResponse](req.op, err)
	}
	return call(ctx, c, req, func(resp *ContentResponse) (string, error) {
		return statusCheck(resp.Status, resp.Message, "content generation failed", "success")
	})
}

// UploadVideo submits a video file.
func (c *Client) UploadVideo(ctx context.Context, file Upload) Envelope[UploadResponse] {
	req, err := multipartRequest("upload video", "/api/videos/upload", "file", file, nil)
	if err != nil {
		return encodeFailure[UploadResponse](req.op, err)
	}
	return call(ctx, c, req, func(resp *UploadResponse) (string, error) {
		message, err := statusCheck(resp.Status, resp.Message, "Upload failed: Invalid response", "success")
		if err != nil {
			return "", err
		}
		if resp.Video == nil {
			return "", errors.New(firstNonEmpty(resp.Message, "Upload failed: Invalid response"))
		}
		return message, nil
	})
}

// AnalyzeVideo requests scene, caption, and thumbnail analysis.
func (c *Client) AnalyzeVideo(ctx context.Context, videoID string) Envelope[AnalyzeResponse] {
	req, err := jsonRequest("analyze video", http.MethodPost, "/api/videos/analyze", AnalyzeRequest{
		VideoID:            videoID,
		AnalyzeScenes:      true,
		GenerateCaptions:   true,
		GenerateThumbnails: true,
	})
	if err != nil {
		return encodeFailure[AnalyzeResponse](req.op, err)
	}
	return call(ctx, c, req, func(resp *AnalyzeResponse) (string, error) {
		message, err := statusCheck(resp.Status, resp.Message, "Analysis failed: Invalid response", "success")
		if err != nil {
			return "", err
		}
		if resp.Analysis == nil {
			return "", errors.New(firstNonEmpty(resp.Message, "Analysis failed: Invalid response"))
		}
		return message, nil
	})
}

// ExportVideo requests renders for the selected platforms. Both "processing"
// and "success" are accepted; the render itself is not awaited.
func (c *Client) ExportVideo(ctx context.Context, videoID string, platforms []string) Envelope[ExportResponse] {
	req, err := jsonRequest("export video", http.MethodPost, "/api/videos/export", ExportRequest{
		VideoID:             videoID,
		Platforms:           platforms,
		IncludeCaptions:     true,
		AutoSelectThumbnail: true,
	})
	if err != nil {
		return encodeFailure[ExportResponse](req.op, err)
	}
	return call(ctx, c, req, func(resp *ExportResponse) (string, error) {
		return statusCheck(resp.Status, resp.Message, "Export failed: Invalid response", "processing", "success")
	})
}

func voiceCheck(resp *VoiceResponse) (string, error) {
	if !resp.Success {
		return "", errors.New(firstNonEmpty(resp.Error, "Processing failed. Please try again."))
	}
	return "", nil
}

func acknowledgementCheck(resp *StatusResponse) (string, error) {
	if strings.EqualFold(strings.TrimSpace(resp.Status), "error") {
		return "", errors.New(firstNonEmpty(resp.Message, "request rejected"))
	}
	return resp.Message, nil
}

func encodeFailure[T any](op string, err error) Envelope[T] {
	return failure[T](err.Error(), services.Wrap(services.ErrValidation, "apiclient", op, "encode request", err))
}

func userIDOrDefault(userID string) string {
	if trimmed := strings.TrimSpace(userID); trimmed != "" {
		return trimmed
	}
	return "anonymous"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
