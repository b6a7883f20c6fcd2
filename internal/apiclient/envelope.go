package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mediastudio/internal/services"
)

const (
	decodeFailureMessage = "invalid response from server"
	canceledMessage      = "request canceled"
)

// Envelope is the uniform result of every remote call. A failed envelope has
// Error populated and Data nil.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// Err carries the classified error for callers that branch on it.
	Err error `json:"-"`
}

// Category reports the error taxonomy bucket of a failed envelope.
func (e Envelope[T]) Category() services.Category {
	return services.Classify(e.Err)
}

func failure[T any](message string, err error) Envelope[T] {
	return Envelope[T]{Success: false, Error: message, Err: err}
}

// call runs req and decodes a 2xx body into T. check may reject a decoded
// body that reports an application-level failure; its returned string is
// used as the envelope message on success.
func call[T any](ctx context.Context, c *Client, req request, check func(*T) (string, error)) Envelope[T] {
	body, err := c.send(ctx, req)
	if err != nil {
		return transportFailure[T](ctx, req.op, err)
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return failure[T](decodeFailureMessage,
			services.Wrap(services.ErrDecode, "apiclient", req.op, decodeFailureMessage, err))
	}
	if check == nil {
		return Envelope[T]{Success: true, Data: &out}
	}
	message, err := check(&out)
	if err != nil {
		return failure[T](err.Error(),
			services.Wrap(services.ErrRejected, "apiclient", req.op, err.Error(), nil))
	}
	return Envelope[T]{Success: true, Data: &out, Message: message}
}

func transportFailure[T any](ctx context.Context, op string, err error) Envelope[T] {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return failure[T](canceledMessage,
			services.Wrap(services.ErrCanceled, "apiclient", op, canceledMessage, err))
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		env := failure[T](statusErr.Error(), fmt.Errorf("apiclient: %s: %w", op, statusErr))
		env.Message = serverDetail(statusErr.Body)
		return env
	}
	return failure[T](err.Error(),
		services.Wrap(services.ErrTransient, "apiclient", op, "network failure", err))
}

// serverDetail extracts a human readable message from an error body.
func serverDetail(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	if detail, ok := payload.Detail.(string); ok && strings.TrimSpace(detail) != "" {
		return strings.TrimSpace(detail)
	}
	for _, candidate := range []string{payload.Message, payload.Error} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// statusCheck accepts bodies whose status is one of allowed.
func statusCheck(status, message, fallback string, allowed ...string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	for _, candidate := range allowed {
		if normalized == candidate {
			return message, nil
		}
	}
	if msg := strings.TrimSpace(message); msg != "" {
		return "", errors.New(msg)
	}
	return "", errors.New(fallback)
}
