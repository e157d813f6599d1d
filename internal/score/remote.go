package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/logger"
)

const maxReportBody = 1 << 20

// Reporter produces the final report payload handed to the caller.
type Reporter interface {
	Generate(ctx context.Context, profile candidate.Profile, rep *Report) json.RawMessage
}

// RemoteReporter asks a remote service to enrich the report and falls
// back to a locally synthesized payload when the call fails. Generate
// therefore never fails.
type RemoteReporter struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewRemoteReporter creates a reporter against baseURL.
func NewRemoteReporter(baseURL string, timeout time.Duration, log logger.Logger) *RemoteReporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteReporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.Named("report"),
	}
}

type reportRequest struct {
	CandidateProfile candidate.Profile `json:"candidateProfile"`
	Scores           *Normalized       `json:"scores"`
}

func (r *RemoteReporter) Generate(ctx context.Context, profile candidate.Profile, rep *Report) json.RawMessage {
	payload, err := r.fetch(ctx, profile, rep)
	if err != nil {
		r.log.Warn(ctx, "remote report failed, synthesizing locally", logger.Error(err))
		return LocalReport(rep)
	}
	return payload
}

func (r *RemoteReporter) fetch(ctx context.Context, profile candidate.Profile, rep *Report) (json.RawMessage, error) {
	body, err := json.Marshal(reportRequest{CandidateProfile: profile, Scores: Normalize(rep)})
	if err != nil {
		return nil, fmt.Errorf("encoding report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/report", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("report service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBody))
	if err != nil {
		return nil, fmt.Errorf("reading report response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("report service returned malformed JSON")
	}
	return raw, nil
}

// LocalReporter synthesizes the payload offline, with no remote call.
type LocalReporter struct{}

func (LocalReporter) Generate(_ context.Context, _ candidate.Profile, rep *Report) json.RawMessage {
	return LocalReport(rep)
}

// LocalReport builds the minimal payload from the report alone.
func LocalReport(rep *Report) json.RawMessage {
	raw, err := json.Marshal(Normalize(rep))
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
