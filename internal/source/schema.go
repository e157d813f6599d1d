package source

import "github.com/skillprep/assess/internal/llm"

// QuestionSetSchema is the JSON schema every question payload must
// conform to, whether it arrives from the remote API or from an LLM's
// structured output.
var QuestionSetSchema = &llm.Schema{
	Name:        "assessment-question-set",
	Description: "A set of multiple-choice assessment questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Unique question id; may be empty, the engine assigns one",
						},
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question text shown to the candidate",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The text of the correct option, matching one option verbatim",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Brief explanation of the correct answer",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"easy", "medium", "hard"},
							"description": "Question difficulty",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Category id from the section's vocabulary",
						},
					},
					"required":             []any{"prompt", "options", "correctAnswer", "difficulty", "category"},
					"additionalProperties": true,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": true,
	},
}
