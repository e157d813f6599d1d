package score

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/logger"
)

func sampleReport() *Report {
	return &Report{
		SectionScores: map[string]int{"aptitude": 80, "programming": 60, "employability": 70},
		Employability: []CategoryScore{{Category: "teamwork", Score: 70, Correct: 7, Total: 10}},
		Aggregate:     70,
		Percentile:    63,
		Readiness:     67,
		Strengths:     []string{"quantitative"},
		Weaknesses:    []string{"fundamentals"},
		GeneratedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRemoteReporterGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/report", r.URL.Path)

		var req reportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cand-1", req.CandidateProfile.ID)
		assert.Equal(t, 70, req.Scores.Scores.Aggregate)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary":"strong quantitative profile"}`))
	}))
	defer srv.Close()

	r := NewRemoteReporter(srv.URL, time.Second, logger.Nop())
	payload := r.Generate(t.Context(), candidate.Anonymous("cand-1"), sampleReport())

	assert.JSONEq(t, `{"summary":"strong quantitative profile"}`, string(payload))
}

func TestRemoteReporterFallsBackLocally(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewRemoteReporter(srv.URL, time.Second, logger.Nop())
			payload := r.Generate(t.Context(), candidate.Anonymous("cand-1"), sampleReport())

			var n Normalized
			require.NoError(t, json.Unmarshal(payload, &n))
			assert.Equal(t, 70, n.Scores.Aggregate)
			assert.Equal(t, []string{"quantitative"}, n.Analysis.Strengths)
		})
	}
}

func TestLocalReporter(t *testing.T) {
	payload := LocalReporter{}.Generate(t.Context(), candidate.Profile{}, sampleReport())

	var n Normalized
	require.NoError(t, json.Unmarshal(payload, &n))
	assert.Equal(t, 63, n.Scores.Percentile)
}
