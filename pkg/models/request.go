package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinTopicLength is the minimum number of characters a topic must have.
const MinTopicLength = 10

// ProposalRequest is the job intake payload: a research topic plus hints.
type ProposalRequest struct {
	Topic       string         `json:"topic"`
	KeyPoints   []string       `json:"key_points"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Author      string         `json:"author,omitempty"`
	Institution string         `json:"institution,omitempty"`
	Department  string         `json:"department,omitempty"`
}

// RequestValidationError describes a rejected field on a ProposalRequest.
type RequestValidationError struct {
	Field   string
	Message string
}

func (e *RequestValidationError) Error() string {
	return fmt.Sprintf("invalid request field %q: %s", e.Field, e.Message)
}

// Validate checks the request before any work starts.
// An empty key_points list is valid; a nil one is normalized to empty.
func (r *ProposalRequest) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.Topic)) < MinTopicLength {
		return &RequestValidationError{
			Field:   "topic",
			Message: fmt.Sprintf("must be at least %d characters", MinTopicLength),
		}
	}
	for i, kp := range r.KeyPoints {
		if strings.TrimSpace(kp) == "" {
			return &RequestValidationError{
				Field:   "key_points",
				Message: fmt.Sprintf("entry %d is empty", i),
			}
		}
	}
	return nil
}

// MaxParallelTasks returns the scheduler parallelism requested via
// preferences["max_parallel_tasks"], or 0 when absent or invalid so
// the scheduler falls back to its configured default. JSON numbers
// decode as float64, so both numeric forms are accepted.
func (r *ProposalRequest) MaxParallelTasks() int {
	if r.Preferences != nil {
		switch v := r.Preferences["max_parallel_tasks"].(type) {
		case int:
			if v >= 1 {
				return v
			}
		case float64:
			if v >= 1 {
				return int(v)
			}
		}
	}
	return 0
}

// Preference returns a string preference, or def when absent.
func (r *ProposalRequest) Preference(name, def string) string {
	if r.Preferences != nil {
		if v, ok := r.Preferences[name].(string); ok && v != "" {
			return v
		}
	}
	return def
}
