package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/skillprep/assess/internal/acquire"
	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/question"
	"github.com/skillprep/assess/internal/score"
	"github.com/skillprep/assess/internal/telemetry"
)

// fakeAcquirer serves deterministic sets and counts calls per section.
type fakeAcquirer struct {
	mu         sync.Mutex
	calls      map[string]int
	provenance acquire.Provenance
}

func newFakeAcquirer() *fakeAcquirer {
	return &fakeAcquirer{calls: make(map[string]int), provenance: acquire.SourceNone}
}

func (f *fakeAcquirer) Acquire(_ context.Context, req acquire.Request) acquire.Result {
	f.mu.Lock()
	f.calls[req.SectionID]++
	f.mu.Unlock()

	qs := make([]question.Question, 10)
	for i := range qs {
		qs[i] = question.Question{
			ID:            fmt.Sprintf("%s-q%d", req.SectionID, i),
			Kind:          question.KindMCQ,
			Prompt:        "Pick the right option.",
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Difficulty:    question.DifficultyMedium,
			Category:      question.DefaultCategory(req.SectionType),
		}
	}
	return acquire.Result{Questions: qs, Provenance: f.provenance}
}

func (f *fakeAcquirer) callsFor(sectionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sectionID]
}

// memSnapshots is an in-memory SnapshotStore with a controllable clock.
type memSnapshots struct {
	mu      sync.Mutex
	session string
	takenAt time.Time
	report  string
	saves   int
}

func (s *memSnapshots) SaveSession(_ context.Context, _ string, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = data
	s.takenAt = time.Now()
	s.saves++
	return nil
}

func (s *memSnapshots) LatestSession(_ context.Context, _ string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.takenAt, nil
}

func (s *memSnapshots) SaveReport(_ context.Context, _ string, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = data
	return nil
}

func newMachine(t *testing.T, acq Acquirer, snaps SnapshotStore) *Machine {
	t.Helper()
	m := New(candidate.Anonymous("cand-1"), acq, snaps, score.NewEngine(logger.Nop()), logger.Nop(), nil, DefaultOptions())
	if err := m.Initialize(t.Context()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return m
}

func TestInitializeFreshSession(t *testing.T) {
	acq := newFakeAcquirer()
	m := newMachine(t, acq, &memSnapshots{})

	st := m.Snapshot()
	if st.Phase != PhaseQuestionActive {
		t.Fatalf("phase = %q, want %q", st.Phase, PhaseQuestionActive)
	}
	if len(st.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(st.Sections))
	}
	if !st.Sections[0].Loaded || len(st.Sections[0].Questions) != 10 {
		t.Error("first section not loaded with 10 questions")
	}
	if st.Sections[1].Loaded {
		t.Error("second section loaded eagerly, want lazy")
	}
	if st.TimeRemainingSeconds != 3600 {
		t.Errorf("time budget = %d, want 3600", st.TimeRemainingSeconds)
	}
	if acq.callsFor("aptitude") != 1 {
		t.Errorf("aptitude acquisitions = %d, want 1", acq.callsFor("aptitude"))
	}
}

func TestSelectAnswer(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})

	tests := []struct {
		name       string
		questionID string
		wantErr    bool
	}{
		{name: "issued question", questionID: "aptitude-q0"},
		{name: "empty id", questionID: "", wantErr: true},
		{name: "unknown id", questionID: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.SelectAnswer(t.Context(), tt.questionID, "right")

			if tt.wantErr {
				var invalid *InvalidOperationError
				if !errors.As(err, &invalid) {
					t.Fatalf("err = %v, want InvalidOperationError", err)
				}
				if _, ok := m.Snapshot().Answers[tt.questionID]; ok {
					t.Error("rejected answer was recorded")
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectAnswer: %v", err)
			}
			if got := m.Snapshot().Answers[tt.questionID]; got != "right" {
				t.Errorf("recorded answer = %q, want %q", got, "right")
			}
		})
	}
}

func TestNavigationClamps(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})

	// Back at the absolute start is a no-op.
	m.PreviousQuestion()
	if st := m.Snapshot(); st.CurrentQuestion != 0 || st.CurrentSection != 0 {
		t.Fatalf("position = (%d,%d), want (0,0)", st.CurrentSection, st.CurrentQuestion)
	}

	// Advancing past the last question is a no-op.
	for range 20 {
		m.NextQuestion()
	}
	if st := m.Snapshot(); st.CurrentQuestion != 9 {
		t.Fatalf("question index = %d, want 9 (clamped)", st.CurrentQuestion)
	}
	if st := m.Snapshot(); st.CurrentSection != 0 {
		t.Error("NextQuestion crossed a section boundary")
	}
}

func TestPreviousQuestionCrossesSections(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})
	m.CompleteSection(t.Context())

	st := m.Snapshot()
	if st.CurrentSection != 1 || st.CurrentQuestion != 0 {
		t.Fatalf("position = (%d,%d), want (1,0)", st.CurrentSection, st.CurrentQuestion)
	}

	m.PreviousQuestion()
	st = m.Snapshot()
	if st.CurrentSection != 0 || st.CurrentQuestion != 9 {
		t.Errorf("position = (%d,%d), want (0,9)", st.CurrentSection, st.CurrentQuestion)
	}
}

func TestCompleteSectionAdvancesAndFinishes(t *testing.T) {
	acq := newFakeAcquirer()
	m := newMachine(t, acq, &memSnapshots{})

	m.CompleteSection(t.Context())
	st := m.Snapshot()
	if !st.Sections[0].Completed {
		t.Error("first section not marked completed")
	}
	if !st.Sections[1].Loaded {
		t.Error("second section not acquired on advance")
	}
	if st.Phase != PhaseQuestionActive {
		t.Errorf("phase = %q, want %q", st.Phase, PhaseQuestionActive)
	}

	m.CompleteSection(t.Context())
	m.CompleteSection(t.Context())

	st = m.Snapshot()
	if st.Phase != PhaseAssessmentComplete {
		t.Fatalf("phase = %q, want %q", st.Phase, PhaseAssessmentComplete)
	}
	if m.Report() == nil {
		t.Fatal("no report after completion")
	}

	// Terminal state: further completes are no-ops.
	m.CompleteSection(t.Context())
	if got := m.Snapshot().Phase; got != PhaseAssessmentComplete {
		t.Errorf("phase after extra complete = %q", got)
	}
}

// CompleteSection passes through SectionComplete before loading the
// next section; the transition is visible on the emitted event.
func TestCompleteSectionPassesThroughSectionComplete(t *testing.T) {
	sink := &telemetry.Memory{}
	m := New(candidate.Anonymous("cand-1"), newFakeAcquirer(), &memSnapshots{}, score.NewEngine(logger.Nop()), logger.Nop(), sink, DefaultOptions())
	if err := m.Initialize(t.Context()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	m.CompleteSection(t.Context())

	events := sink.Named(telemetry.EventSectionComplete)
	if len(events) != 1 {
		t.Fatalf("section complete events = %d, want 1", len(events))
	}
	if got := events[0].Data["phase"]; got != string(PhaseSectionComplete) {
		t.Errorf("event phase = %v, want %q", got, PhaseSectionComplete)
	}
	// The pass-through state never lingers: by the time the call
	// returns the next section is active.
	if got := m.Snapshot().Phase; got != PhaseQuestionActive {
		t.Errorf("phase after advance = %q, want %q", got, PhaseQuestionActive)
	}
}

func TestCompletionIsMonotonic(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})
	m.CompleteSection(t.Context())

	// Navigate back into the completed section and answer again.
	m.PreviousQuestion()
	if err := m.SelectAnswer(t.Context(), "aptitude-q9", "wrong"); err != nil {
		t.Fatalf("SelectAnswer in completed section: %v", err)
	}

	if !m.Snapshot().Sections[0].Completed {
		t.Error("completed flag reverted")
	}
}

func TestTimerExpiryForcesCompletion(t *testing.T) {
	acq := newFakeAcquirer()
	snaps := &memSnapshots{}
	m := newMachine(t, acq, snaps)

	if err := m.SelectAnswer(t.Context(), "aptitude-q0", "right"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	m.Tick(t.Context(), time.Duration(m.Snapshot().TimeRemainingSeconds)*time.Second)

	st := m.Snapshot()
	if st.Phase != PhaseAssessmentComplete {
		t.Fatalf("phase = %q, want %q", st.Phase, PhaseAssessmentComplete)
	}
	if st.TimeRemainingSeconds != 0 {
		t.Errorf("time remaining = %d, want 0", st.TimeRemainingSeconds)
	}
	for i, sec := range st.Sections {
		if !sec.Completed {
			t.Errorf("section %d not completed on expiry", i)
		}
	}
	if m.Report() == nil {
		t.Fatal("no report after expiry")
	}
	if snaps.report == "" {
		t.Error("report not persisted")
	}
}

func TestAutosave(t *testing.T) {
	snaps := &memSnapshots{}
	m := newMachine(t, newFakeAcquirer(), snaps)

	before := snaps.saves
	for range 30 {
		m.Tick(t.Context(), time.Second)
	}
	if snaps.saves != before+1 {
		t.Errorf("autosaves after 30s = %d, want 1", snaps.saves-before)
	}
}

func TestResume(t *testing.T) {
	tests := []struct {
		name        string
		age         time.Duration
		wantRestore bool
	}{
		{name: "one hour old", age: time.Hour, wantRestore: true},
		{name: "four hours old", age: 4 * time.Hour, wantRestore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acq := newFakeAcquirer()
			snaps := &memSnapshots{}
			first := newMachine(t, acq, snaps)
			if err := first.SelectAnswer(t.Context(), "aptitude-q0", "right"); err != nil {
				t.Fatalf("SelectAnswer: %v", err)
			}
			first.NextQuestion()
			first.Close(t.Context())

			saved := first.Snapshot()
			snaps.takenAt = time.Now().Add(-tt.age)

			second := New(candidate.Anonymous("cand-1"), acq, snaps, score.NewEngine(logger.Nop()), logger.Nop(), nil, DefaultOptions())
			if err := second.Initialize(t.Context()); err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			st := second.Snapshot()

			if tt.wantRestore {
				if st.SessionID != saved.SessionID {
					t.Error("fresh session started, want restore")
				}
				if st.CurrentQuestion != 1 {
					t.Errorf("question index = %d, want 1", st.CurrentQuestion)
				}
				if st.Answers["aptitude-q0"] != "right" {
					t.Error("answers not restored")
				}
				if st.TimeRemainingSeconds != saved.TimeRemainingSeconds {
					t.Errorf("timer = %d, want %d", st.TimeRemainingSeconds, saved.TimeRemainingSeconds)
				}
			} else {
				if st.SessionID == saved.SessionID {
					t.Error("stale session restored, want fresh")
				}
				if len(st.Answers) != 0 {
					t.Error("answers carried into fresh session")
				}
			}
		})
	}
}

func TestResumeDiscardsCorruptSnapshot(t *testing.T) {
	snaps := &memSnapshots{session: "{not json", takenAt: time.Now()}
	m := New(candidate.Anonymous("cand-1"), newFakeAcquirer(), snaps, nil, logger.Nop(), nil, DefaultOptions())
	if err := m.Initialize(t.Context()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if st := m.Snapshot(); st.Phase != PhaseQuestionActive || len(st.Sections) != 3 {
		t.Error("corrupt snapshot did not fall back to a fresh session")
	}
}

func TestPreloadNextSection(t *testing.T) {
	acq := newFakeAcquirer()
	m := newMachine(t, acq, &memSnapshots{})

	// Answer half the first section to cross the preload threshold.
	for i := range 5 {
		if err := m.SelectAnswer(t.Context(), fmt.Sprintf("aptitude-q%d", i), "right"); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
	}
	m.Close(t.Context())

	if !m.Snapshot().Sections[1].Loaded {
		t.Fatal("next section not preloaded after half answered")
	}
	if acq.callsFor("programming") != 1 {
		t.Errorf("programming acquisitions = %d, want 1", acq.callsFor("programming"))
	}
}

func TestCompleteSectionReusesPreloadedSet(t *testing.T) {
	acq := newFakeAcquirer()
	m := newMachine(t, acq, &memSnapshots{})

	for i := range 5 {
		if err := m.SelectAnswer(t.Context(), fmt.Sprintf("aptitude-q%d", i), "right"); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
	}
	m.Close(t.Context())
	m.CompleteSection(t.Context())

	if got := acq.callsFor("programming"); got != 1 {
		t.Errorf("programming acquisitions = %d, want 1 (preloaded set reused)", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})

	st := m.Snapshot()
	st.Sections[0].Questions[0].Prompt = "tampered"
	st.Answers["aptitude-q0"] = "tampered"

	clean := m.Snapshot()
	if clean.Sections[0].Questions[0].Prompt == "tampered" {
		t.Error("snapshot aliases internal question data")
	}
	if _, ok := clean.Answers["aptitude-q0"]; ok {
		t.Error("snapshot aliases internal answers map")
	}
}

func TestStateSerializationRoundTrip(t *testing.T) {
	m := newMachine(t, newFakeAcquirer(), &memSnapshots{})
	if err := m.SelectAnswer(t.Context(), "aptitude-q0", "right"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	st := m.Snapshot()
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got State
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.SessionID != st.SessionID || got.TimeRemainingSeconds != st.TimeRemainingSeconds {
		t.Error("scalar fields lost in round trip")
	}
	if got.Answers["aptitude-q0"] != "right" {
		t.Error("answers lost in round trip")
	}
	if len(got.Sections) != len(st.Sections) {
		t.Error("sections lost in round trip")
	}
}
