package question

import (
	"encoding/json"
	"strings"
	"testing"
)

// Remote payloads carry category as a plain JSON string; the Go record
// must keep that shape on both marshal and unmarshal.
func TestQuestionCategoryWireShape(t *testing.T) {
	q := Question{
		ID:            "q-1",
		Kind:          KindMCQ,
		Prompt:        "What is 12 divided by 4?",
		Options:       []string{"2", "3", "4", "6"},
		CorrectAnswer: "3",
		Difficulty:    DifficultyEasy,
		Category:      "quantitative",
	}

	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"category":"quantitative"`) {
		t.Errorf("category not encoded as a plain string: %s", raw)
	}

	payload := `{
		"id": "r-1",
		"kind": "mcq",
		"prompt": "Which word is a synonym of rapid?",
		"options": ["slow", "swift", "late", "weak"],
		"correctAnswer": "swift",
		"difficulty": "medium",
		"category": "verbal"
	}`
	var got Question
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Category != "verbal" {
		t.Errorf("category = %q, want %q", got.Category, "verbal")
	}
	if !InVocabulary(SectionAptitude, got.Category) {
		t.Errorf("decoded category %q not recognized by the aptitude vocabulary", got.Category)
	}
}
