package apiclient

import (
	"context"
	"net/http"

	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

// Health issues a single unretried GET / bounded by the health timeout and
// reports whether the backend answered with a 2xx status.
func (c *Client) Health(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	endpoint, err := c.endpoint("/", nil)
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set(requestIDHeader, requestID)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("health probe failed", logging.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}
