// Package score computes section and aggregate results, category
// breakdowns, and strengths/weaknesses analysis from final answers.
package score

import (
	"time"

	"github.com/skillprep/assess/internal/question"
)

// SectionOutcome is the finalized, read-only view of one section that
// the engine scores. The caller owns the copies.
type SectionOutcome struct {
	ID         string
	Type       question.SectionType
	Categories []question.Category
	Questions  []question.Question
}

// CategoryScore is one category's result within a report.
type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// Report is the immutable result of one completed assessment. All
// score values are integers in [0,100].
type Report struct {
	SectionScores map[string]int  `json:"sectionScores"`
	Employability []CategoryScore `json:"employability"`
	Aggregate     int             `json:"aggregate"`
	Percentile    int             `json:"percentile"`
	Readiness     int             `json:"readiness"`
	Strengths     []string        `json:"strengths"`
	Weaknesses    []string        `json:"weaknesses"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// ZeroReport is the all-zero default produced when scoring fails
// internally: a completed assessment always yields some report.
func ZeroReport() *Report {
	return &Report{
		SectionScores: map[string]int{},
		Employability: []CategoryScore{},
		Strengths:     []string{},
		Weaknesses:    []string{},
		GeneratedAt:   time.Now(),
	}
}

// Normalized is the storage form of a Report: numeric scores and the
// textual analysis split apart so they can be persisted and queried
// independently.
type Normalized struct {
	Scores      NormalizedScores   `json:"scores"`
	Analysis    NormalizedAnalysis `json:"analysis"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

type NormalizedScores struct {
	Sections      map[string]int  `json:"sections"`
	Employability []CategoryScore `json:"employability"`
	Aggregate     int             `json:"aggregate"`
	Percentile    int             `json:"percentile"`
	Readiness     int             `json:"readiness"`
}

type NormalizedAnalysis struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Normalize splits a report into its storage form.
func Normalize(r *Report) *Normalized {
	return &Normalized{
		Scores: NormalizedScores{
			Sections:      r.SectionScores,
			Employability: r.Employability,
			Aggregate:     r.Aggregate,
			Percentile:    r.Percentile,
			Readiness:     r.Readiness,
		},
		Analysis: NormalizedAnalysis{
			Strengths:  r.Strengths,
			Weaknesses: r.Weaknesses,
		},
		GeneratedAt: r.GeneratedAt,
	}
}

// Denormalize reassembles a Report from its storage form. It is the
// exact inverse of Normalize.
func Denormalize(n *Normalized) *Report {
	return &Report{
		SectionScores: n.Scores.Sections,
		Employability: n.Scores.Employability,
		Aggregate:     n.Scores.Aggregate,
		Percentile:    n.Scores.Percentile,
		Readiness:     n.Scores.Readiness,
		Strengths:     n.Analysis.Strengths,
		Weaknesses:    n.Analysis.Weaknesses,
		GeneratedAt:   n.GeneratedAt,
	}
}
