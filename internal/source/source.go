// Package source defines where question sets come from: a remote
// assessment API or an LLM provider generating them directly. Both sit
// behind QuestionSource; the acquisition pipeline owns retries and
// fallback on top.
package source

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/llm"
	"github.com/skillprep/assess/internal/question"
)

// Request describes one question-set fetch.
type Request struct {
	SectionID   string
	SectionType question.SectionType

	// Category narrows generation to one category; empty means the
	// whole section vocabulary.
	Category string

	// Count is the number of questions requested. Sources may return
	// fewer or more; the pipeline normalizes.
	Count int

	// Profile personalizes generation.
	Profile candidate.Profile
}

// Result is a fetched question set before validation.
type Result struct {
	Questions    []question.Question
	Cached       bool
	CacheSource  string
	Personalized bool
}

// QuestionSource fetches question sets.
type QuestionSource interface {
	Fetch(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// RemoteError is a failed remote call, carrying the HTTP status when
// one was received (0 for transport-level failures).
type RemoteError struct {
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote source: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote source: %v", e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Retryable classifies fetch errors for the retry policy. Timeouts,
// transport errors, rate limits, 5xx, and malformed payloads are
// retryable; explicit cancellation is not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		// 4xx other than 429 means the request itself is wrong.
		if remote.Status >= 400 && remote.Status < 500 && remote.Status != 429 {
			return false
		}
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var rateLimit *llm.ErrRateLimit
	var unavailable *llm.ErrProviderUnavailable
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &rateLimit) || errors.As(err, &unavailable) || errors.As(err, &invalid) {
		return true
	}

	// Unknown errors are treated as transient.
	return true
}
