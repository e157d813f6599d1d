package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillprep/assess/internal/llm"
	"github.com/skillprep/assess/internal/question"
)

const generationSystemPrompt = `You are a question author for a timed skill assessment used in hiring preparation.
You write multiple-choice questions with exactly 4 options, one correct answer that matches an option verbatim, and a short explanation.
Aptitude questions must contain no programming content of any kind: no code, no language keywords, no tool names.
Programming questions are conceptual unless a snippet is essential.
Employability questions are workplace-judgment scenarios with one clearly best option.
Output JSON conforming to the provided schema and nothing else.`

// LLMSource generates question sets directly through an LLM provider.
type LLMSource struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewLLMSource creates a source backed by the given provider.
func NewLLMSource(provider llm.Provider) *LLMSource {
	return &LLMSource{
		provider:    provider,
		maxTokens:   4096,
		temperature: 0.7,
	}
}

func (s *LLMSource) Name() string { return "llm" }

type generatedSet struct {
	Questions []question.Question `json:"questions"`
}

func (s *LLMSource) Fetch(ctx context.Context, req Request) (*Result, error) {
	ctx = llm.WithPurpose(ctx, "question-set")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: generationSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req)},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var out generatedSet
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	return &Result{
		Questions:    out.Questions,
		Personalized: req.Profile.ID != "",
	}, nil
}

// buildUserMessage assembles the generation request from the section
// and candidate context.
func buildUserMessage(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d multiple-choice questions for the %q section.\n", req.Count, req.SectionType)

	if req.Category != "" {
		fmt.Fprintf(&b, "All questions belong to the category %q.\n", req.Category)
	} else {
		cats := question.CategoriesFor(req.SectionType)
		ids := make([]string, len(cats))
		for i, c := range cats {
			ids[i] = c.ID
		}
		fmt.Fprintf(&b, "Spread questions across these categories: %s.\n", strings.Join(ids, ", "))
	}

	b.WriteString("Mix difficulties: mostly medium, some easy and hard.\n")

	p := req.Profile
	if p.ExperienceLevel != "" {
		fmt.Fprintf(&b, "The candidate's experience level is %q.\n", p.ExperienceLevel)
	}
	if p.TargetRole != "" {
		fmt.Fprintf(&b, "The candidate is preparing for a %q role.\n", p.TargetRole)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Candidate skills to draw on where relevant: %s.\n", strings.Join(p.Skills, ", "))
	}

	return b.String()
}
