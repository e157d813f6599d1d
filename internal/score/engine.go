package score

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/question"
)

// minCategorySample is the smallest per-category question count that
// makes a category eligible for the strengths/weaknesses analysis.
const minCategorySample = 3

// Engine computes reports. Stateless and safe for concurrent use.
type Engine struct {
	log logger.Logger
	now func() time.Time
}

// NewEngine creates a score engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log.Named("score"), now: time.Now}
}

// Score produces the final report. It never panics out: any internal
// failure degrades to the all-zero default report.
func (e *Engine) Score(sections []SectionOutcome, answers map[string]string) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(context.Background(), "scoring failed, returning zero report",
				logger.Any("panic", r))
			report = ZeroReport()
		}
	}()

	report = &Report{
		SectionScores: make(map[string]int, len(sections)),
		Employability: []CategoryScore{},
		Strengths:     []string{},
		Weaknesses:    []string{},
		GeneratedAt:   e.now(),
	}

	parts := make(map[question.SectionType]int)
	for _, sec := range sections {
		switch sec.Type {
		case question.SectionEmployability:
			breakdown := employabilityBreakdown(sec, answers)
			report.Employability = breakdown
			report.SectionScores[sec.ID] = meanOf(breakdown)
			parts[sec.Type] = report.SectionScores[sec.ID]
		default:
			s := sectionAccuracy(sec.Questions, answers)
			report.SectionScores[sec.ID] = s
			parts[sec.Type] = s
		}
	}

	// Three-way unweighted mean: aptitude, programming, and the
	// already-collapsed employability value.
	sum := parts[question.SectionAptitude] +
		parts[question.SectionProgramming] +
		parts[question.SectionEmployability]
	report.Aggregate = roundPct(float64(sum) / 3)
	report.Percentile = Percentile(report.Aggregate)
	report.Readiness = Readiness(report.Aggregate)
	report.Strengths, report.Weaknesses = analyze(sections, answers)

	return report
}

// Percentile derives a percentile-like number from the aggregate
// score. Placeholder linear transform, not computed against a real
// population; treat as indicative only.
func Percentile(aggregate int) int {
	return roundPct(float64(aggregate) * 0.9)
}

// Readiness derives the preparedness heuristic from the aggregate
// score. Same caveat as Percentile.
func Readiness(aggregate int) int {
	return roundPct(float64(aggregate) * 0.95)
}

// sectionAccuracy scores a plain section: correct over total, scaled
// to 0-100. Zero questions score zero.
func sectionAccuracy(qs []question.Question, answers map[string]string) int {
	if len(qs) == 0 {
		return 0
	}
	correct := 0
	for _, q := range qs {
		if q.IsCorrect(answers[q.ID]) {
			correct++
		}
	}
	return roundPct(float64(correct) / float64(len(qs)) * 100)
}

// employabilityBreakdown scores each declared category independently.
// Categories with no questions score zero.
func employabilityBreakdown(sec SectionOutcome, answers map[string]string) []CategoryScore {
	cats := sec.Categories
	if len(cats) == 0 {
		cats = question.CategoriesFor(sec.Type)
	}

	out := make([]CategoryScore, 0, len(cats))
	for _, cat := range cats {
		cs := CategoryScore{Category: cat.ID}
		for _, q := range sec.Questions {
			if q.Category != cat.ID {
				continue
			}
			cs.Total++
			if q.IsCorrect(answers[q.ID]) {
				cs.Correct++
			}
		}
		if cs.Total > 0 {
			cs.Score = roundPct(float64(cs.Correct) / float64(cs.Total) * 100)
		}
		out = append(out, cs)
	}
	return out
}

// meanOf collapses a category breakdown to one section value.
func meanOf(breakdown []CategoryScore) int {
	if len(breakdown) == 0 {
		return 0
	}
	sum := 0
	for _, cs := range breakdown {
		sum += cs.Score
	}
	return roundPct(float64(sum) / float64(len(breakdown)))
}

// analyze aggregates per-category accuracy across every section and
// returns the top and bottom three eligible categories. Ties break
// alphabetically for determinism.
func analyze(sections []SectionOutcome, answers map[string]string) (strengths, weaknesses []string) {
	type tally struct {
		correct int
		total   int
	}
	byCat := make(map[string]*tally)

	for _, sec := range sections {
		for _, q := range sec.Questions {
			key := q.Category
			if key == "" {
				continue
			}
			t, ok := byCat[key]
			if !ok {
				t = &tally{}
				byCat[key] = t
			}
			t.total++
			if q.IsCorrect(answers[q.ID]) {
				t.correct++
			}
		}
	}

	type rated struct {
		name  string
		score int
	}
	var eligible []rated
	for cat, t := range byCat {
		if t.total < minCategorySample {
			continue
		}
		eligible = append(eligible, rated{
			name:  cat,
			score: roundPct(float64(t.correct) / float64(t.total) * 100),
		})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].score != eligible[j].score {
			return eligible[i].score > eligible[j].score
		}
		return eligible[i].name < eligible[j].name
	})

	strengths = []string{}
	weaknesses = []string{}
	for i := 0; i < len(eligible) && i < 3; i++ {
		strengths = append(strengths, eligible[i].name)
	}
	for i := len(eligible) - 1; i >= 0 && len(weaknesses) < 3; i-- {
		weaknesses = append(weaknesses, eligible[i].name)
	}
	return strengths, weaknesses
}

func roundPct(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
