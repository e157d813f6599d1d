package question

import "github.com/google/uuid"

// Rejection reasons, used for logging and metrics labels.
const (
	RejectEmptyPrompt    = "empty-prompt"
	RejectNoOptions      = "no-options"
	RejectAnswerMismatch = "answer-mismatch"
	RejectImpureContent  = "impure-content"
)

// ValidationResult reports the outcome of validating one question.
// When Accepted is true, Repaired holds the (possibly corrected)
// question to issue; when false, Reason names the rule that rejected it.
type ValidationResult struct {
	Accepted bool
	Repaired Question
	Reason   string
}

// Validate checks a candidate question against the section's rules,
// repairing what is safely repairable and rejecting the rest.
//
// Repairable: a missing or out-of-vocabulary category becomes the
// section default; a missing kind or id is filled in. Not repairable:
// an empty prompt, an empty option list, a correct answer that does not
// match exactly one option, and (for aptitude only) programming content
// in the prompt.
func Validate(q Question, sectionType SectionType) ValidationResult {
	if q.Prompt == "" {
		return ValidationResult{Reason: RejectEmptyPrompt}
	}
	if len(q.Options) == 0 {
		return ValidationResult{Reason: RejectNoOptions}
	}

	// The correct answer must equal exactly one option, case-sensitive.
	// Guessing the intended answer on a mismatch is unsafe, so reject.
	matches := 0
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			matches++
		}
	}
	if matches != 1 {
		return ValidationResult{Reason: RejectAnswerMismatch}
	}

	// The aptitude section must stay domain-pure: no code leaking in
	// from the programming section.
	if sectionType == SectionAptitude && ContainsProgrammingContent(q.Prompt) {
		return ValidationResult{Reason: RejectImpureContent}
	}

	repaired := q
	if repaired.ID == "" {
		repaired.ID = uuid.NewString()
	}
	if repaired.Kind == "" {
		repaired.Kind = KindMCQ
	}
	if !InVocabulary(sectionType, repaired.Category) {
		repaired.Category = DefaultCategory(sectionType)
	}
	if !validDifficulty(repaired.Difficulty) {
		repaired.Difficulty = DifficultyMedium
	}

	return ValidationResult{Accepted: true, Repaired: repaired}
}

func validDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
