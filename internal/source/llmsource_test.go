package source

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/llm"
	"github.com/skillprep/assess/internal/question"
)

func cannedSet(t *testing.T, n int) json.RawMessage {
	t.Helper()
	qs := make([]map[string]any, n)
	for i := range qs {
		qs[i] = map[string]any{
			"prompt":        "Complete the series: 2, 4, 8, 16",
			"options":       []string{"24", "30", "32", "36"},
			"correctAnswer": "32",
			"explanation":   "Each term doubles.",
			"difficulty":    "easy",
			"category":      "logical-reasoning",
		}
	}
	raw, err := json.Marshal(map[string]any{"questions": qs})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestLLMSource_Fetch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: cannedSet(t, 3)})
	s := NewLLMSource(mock)

	res, err := s.Fetch(context.Background(), Request{
		SectionType: question.SectionAptitude,
		Count:       3,
		Profile:     candidate.Profile{ID: "cand-1", TargetRole: "backend developer"},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Questions) != 3 {
		t.Errorf("got %d questions, want 3", len(res.Questions))
	}
	if !res.Personalized {
		t.Error("expected personalized result for a known candidate")
	}

	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != QuestionSetSchema.Name {
		t.Error("expected the question-set schema on the request")
	}
	userMsg := req.Messages[0].Content
	if !strings.Contains(userMsg, `"aptitude"`) {
		t.Errorf("user message missing section type: %q", userMsg)
	}
	if !strings.Contains(userMsg, "backend developer") {
		t.Errorf("user message missing target role: %q", userMsg)
	}
}

func TestLLMSource_ProviderErrorPropagates(t *testing.T) {
	mock := llm.NewMockProvider() // empty queue → provider unavailable
	s := NewLLMSource(mock)

	_, err := s.Fetch(context.Background(), Request{SectionType: question.SectionProgramming, Count: 5})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !Retryable(err) {
		t.Error("provider unavailability should be retryable")
	}
}

func TestLLMSource_CategoryNarrowsPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: cannedSet(t, 1)})
	s := NewLLMSource(mock)

	_, err := s.Fetch(context.Background(), Request{
		SectionType: question.SectionEmployability,
		Category:    "teamwork",
		Count:       1,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, `"teamwork"`) {
		t.Error("expected the category in the generation prompt")
	}
}
