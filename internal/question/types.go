// Package question defines the question data model, the per-section
// category vocabularies, validation/repair rules, and the offline
// emergency generator.
package question

// SectionType identifies which block of the assessment a question
// belongs to.
type SectionType string

const (
	SectionAptitude      SectionType = "aptitude"
	SectionProgramming   SectionType = "programming"
	SectionEmployability SectionType = "employability"
)

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	switch t {
	case SectionAptitude, SectionProgramming, SectionEmployability:
		return true
	}
	return false
}

// Difficulty is the question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// KindMCQ is the only question kind the engine issues.
const KindMCQ = "mcq"

// Category is a sub-topic tag within a section, used for score
// breakdowns and content balancing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Question is a single multiple-choice item. Immutable once issued to a
// section.
type Question struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Prompt        string     `json:"prompt"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`

	// TimeLimitSeconds is an optional per-question budget. Zero means the
	// section timer alone applies.
	TimeLimitSeconds int `json:"timeLimitSeconds,omitempty"`
}

// IsCorrect reports whether answer matches the question's correct
// answer. Comparison is case-sensitive, matching how options are issued.
func (q Question) IsCorrect(answer string) bool {
	return answer != "" && answer == q.CorrectAnswer
}
