// Package assessment implements the state machine driving a timed,
// multi-section skill assessment: section and question progression,
// answer recording, the countdown timer, and snapshot-based resume.
package assessment

import (
	"time"

	"github.com/skillprep/assess/internal/acquire"
	"github.com/skillprep/assess/internal/question"
)

// Phase is the machine's lifecycle state.
type Phase string

const (
	PhaseInitializing       Phase = "initializing"
	PhaseSectionLoading     Phase = "section_loading"
	PhaseQuestionActive     Phase = "question_active"
	PhaseSectionComplete    Phase = "section_complete"
	PhaseAssessmentComplete Phase = "assessment_complete"
)

// Section is one timed block of the assessment.
type Section struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Type            question.SectionType `json:"sectionType"`
	DurationMinutes int                  `json:"durationMinutes"`

	// Categories is the declared breakdown list, only set for the
	// employability section.
	Categories []question.Category `json:"categories,omitempty"`

	Questions []question.Question `json:"questions"`
	Completed bool                `json:"completed"`
	Loaded    bool                `json:"loaded"`
}

// State is the canonical assessment progress record. It is owned and
// mutated exclusively by the Machine; callers receive deep copies.
type State struct {
	SessionID   string `json:"sessionId"`
	CandidateID string `json:"candidateId"`
	Phase       Phase  `json:"phase"`

	Sections        []Section `json:"sections"`
	CurrentSection  int       `json:"currentSectionIndex"`
	CurrentQuestion int       `json:"currentQuestionIndex"`

	Answers              map[string]string  `json:"answers"`
	TimeRemainingSeconds int                `json:"timeRemainingSeconds"`
	CacheSource          acquire.Provenance `json:"cacheSource"`

	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSections returns the standard three-section layout.
func DefaultSections() []Section {
	return []Section{
		{
			ID:              "aptitude",
			Title:           "Aptitude",
			Type:            question.SectionAptitude,
			DurationMinutes: 20,
		},
		{
			ID:              "programming",
			Title:           "Programming",
			Type:            question.SectionProgramming,
			DurationMinutes: 20,
		},
		{
			ID:              "employability",
			Title:           "Employability",
			Type:            question.SectionEmployability,
			DurationMinutes: 20,
			Categories:      question.CategoriesFor(question.SectionEmployability),
		},
	}
}

// TotalBudget sums the section durations into the global countdown.
func TotalBudget(sections []Section) time.Duration {
	var total time.Duration
	for _, s := range sections {
		total += time.Duration(s.DurationMinutes) * time.Minute
	}
	return total
}

// currentSection returns the active section, or nil when indices are
// out of range.
func (s *State) currentSection() *Section {
	if s.CurrentSection < 0 || s.CurrentSection >= len(s.Sections) {
		return nil
	}
	return &s.Sections[s.CurrentSection]
}

// issued reports whether a question with the given id has been issued
// to the candidate in any loaded section.
func (s *State) issued(questionID string) bool {
	for i := range s.Sections {
		for j := range s.Sections[i].Questions {
			if s.Sections[i].Questions[j].ID == questionID {
				return true
			}
		}
	}
	return false
}

// clone deep-copies the state so callers can never alias the machine's
// internal record.
func (s *State) clone() State {
	out := *s
	out.Sections = make([]Section, len(s.Sections))
	for i, sec := range s.Sections {
		cp := sec
		cp.Categories = append([]question.Category(nil), sec.Categories...)
		cp.Questions = append([]question.Question(nil), sec.Questions...)
		for j := range cp.Questions {
			cp.Questions[j].Options = append([]string(nil), cp.Questions[j].Options...)
		}
		out.Sections[i] = cp
	}
	out.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	return out
}
