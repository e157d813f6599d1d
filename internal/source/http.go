package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/llm"
	"github.com/skillprep/assess/internal/question"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPSource fetches question sets from the remote assessment API:
// POST {sectionType, category, candidateProfile, requestedCount} →
// {questions, cached, cacheSource, isPersonalized}.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for the API at baseURL. Timeout
// bounds the whole request; the pipeline layers its own deadline and
// retries on top.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return "http" }

type fetchRequest struct {
	SectionType    string            `json:"sectionType"`
	Category       string            `json:"category,omitempty"`
	Profile        candidate.Profile `json:"candidateProfile"`
	RequestedCount int               `json:"requestedCount"`
}

type fetchResponse struct {
	Questions    []question.Question `json:"questions"`
	Cached       bool                `json:"cached"`
	CacheSource  string              `json:"cacheSource"`
	Personalized bool                `json:"isPersonalized"`
}

func (s *HTTPSource) Fetch(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(fetchRequest{
		SectionType:    string(req.SectionType),
		Category:       req.Category,
		Profile:        req.Profile,
		RequestedCount: req.Count,
	})
	if err != nil {
		return nil, &RemoteError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/questions", bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		// Preserve context errors so cancellation is not retried.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	// Malformed JSON is a retryable remote failure, same as a 5xx.
	if err := llm.ValidateJSON(QuestionSetSchema, raw); err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Err: err}
	}

	var out fetchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &Result{
		Questions:    out.Questions,
		Cached:       out.Cached,
		CacheSource:  out.CacheSource,
		Personalized: out.Personalized,
	}, nil
}
