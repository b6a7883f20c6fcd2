package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
	ErrClient     = errors.New("client error")
	ErrRejected   = errors.New("request rejected")
	ErrTransient  = errors.New("transient failure")
	ErrDecode     = errors.New("decode error")
	ErrCanceled   = errors.New("canceled")
)

// Category names the taxonomy bucket an error belongs to.
type Category string

const (
	CategoryNone       Category = ""
	CategoryValidation Category = "validation"
	CategoryClient     Category = "client"
	CategoryRejected   Category = "rejected"
	CategoryTransient  Category = "transient"
	CategoryDecode     Category = "decode"
	CategoryCanceled   Category = "canceled"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto its taxonomy bucket.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return CategoryCanceled
	case errors.Is(err, ErrValidation):
		return CategoryValidation
	case errors.Is(err, ErrClient):
		return CategoryClient
	case errors.Is(err, ErrRejected):
		return CategoryRejected
	case errors.Is(err, ErrDecode):
		return CategoryDecode
	default:
		return CategoryTransient
	}
}

// Retryable reports whether the error belongs to the transient bucket.
func Retryable(err error) bool {
	return err != nil && Classify(err) == CategoryTransient
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
