package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/question"
)

func validPayload() string {
	return `{
		"questions": [{
			"id": "q-1",
			"prompt": "What is 15% of 240?",
			"options": ["30", "32", "36", "40"],
			"correctAnswer": "36",
			"explanation": "0.15 x 240 = 36",
			"difficulty": "easy",
			"category": "quantitative"
		}],
		"cached": false,
		"cacheSource": "none",
		"isPersonalized": true
	}`
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotBody fetchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/questions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validPayload()))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second)
	res, err := s.Fetch(context.Background(), Request{
		SectionType: question.SectionAptitude,
		Count:       10,
		Profile:     candidate.Profile{ID: "cand-1", ExperienceLevel: "fresher"},
	})
	require.NoError(t, err)

	assert.Len(t, res.Questions, 1)
	assert.Equal(t, "36", res.Questions[0].CorrectAnswer)
	assert.True(t, res.Personalized)

	assert.Equal(t, "aptitude", gotBody.SectionType)
	assert.Equal(t, 10, gotBody.RequestedCount)
	assert.Equal(t, "cand-1", gotBody.Profile.ID)
}

func TestHTTPSource_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := s.Fetch(context.Background(), Request{SectionType: question.SectionAptitude, Count: 10})
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.True(t, Retryable(err))
}

func TestHTTPSource_BadRequestIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := s.Fetch(context.Background(), Request{SectionType: question.SectionAptitude, Count: 10})
	require.Error(t, err)
	assert.False(t, Retryable(err))
}

func TestHTTPSource_MalformedJSONIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"questions": "not an array"}`))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := s.Fetch(context.Background(), Request{SectionType: question.SectionAptitude, Count: 10})
	require.Error(t, err)
	assert.True(t, Retryable(err))
}

func TestHTTPSource_CancellationIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(validPayload()))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := s.Fetch(ctx, Request{SectionType: question.SectionAptitude, Count: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, Retryable(err))
}

func TestRetryable_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, false},
		{"status 503", &RemoteError{Status: 503, Err: errors.New("x")}, true},
		{"status 429", &RemoteError{Status: 429, Err: errors.New("x")}, true},
		{"status 404", &RemoteError{Status: 404, Err: errors.New("x")}, false},
		{"transport", &RemoteError{Err: errors.New("connection refused")}, true},
		{"unknown", errors.New("mystery"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
