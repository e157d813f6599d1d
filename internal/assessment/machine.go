package assessment

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillprep/assess/internal/acquire"
	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/score"
	"github.com/skillprep/assess/internal/telemetry"
)

// Acquirer supplies question sets. acquire.Pipeline satisfies this.
type Acquirer interface {
	Acquire(ctx context.Context, req acquire.Request) acquire.Result
}

// SnapshotStore persists opaque state blobs for session resume.
// Absence is reported with an empty blob, not an error.
type SnapshotStore interface {
	SaveSession(ctx context.Context, candidateID, data string) error
	LatestSession(ctx context.Context, candidateID string) (data string, takenAt time.Time, err error)
	SaveReport(ctx context.Context, candidateID, data string) error
}

// Scorer produces the final report from completed sections.
type Scorer interface {
	Score(sections []score.SectionOutcome, answers map[string]string) *score.Report
}

// Options tunes the machine's timing behavior.
type Options struct {
	// SnapshotFreshness is how old a saved session may be and still be
	// restored instead of starting fresh.
	SnapshotFreshness time.Duration

	// AutosaveInterval is how often the ticking timer persists a
	// best-effort snapshot.
	AutosaveInterval time.Duration

	// TickInterval is the countdown granularity used by Run.
	TickInterval time.Duration

	// PreloadThreshold is the fraction of the current section's
	// questions that must be answered before the next section is
	// acquired in the background.
	PreloadThreshold float64
}

// DefaultOptions returns the standard timing settings: 3 hour resume
// window, 30 second autosave, 1 second ticks, preload at half answered.
func DefaultOptions() Options {
	return Options{
		SnapshotFreshness: 3 * time.Hour,
		AutosaveInterval:  30 * time.Second,
		TickInterval:      time.Second,
		PreloadThreshold:  0.5,
	}
}

// Machine is the assessment state machine. One instance serves one
// candidate session; all operations are safe for concurrent use.
type Machine struct {
	mu    sync.Mutex
	state State

	profile   candidate.Profile
	acquirer  Acquirer
	snapshots SnapshotStore
	scorer    Scorer
	sink      telemetry.Sink
	log       logger.Logger
	opts      Options

	report       *score.Report
	preloading   map[int]bool
	sinceSave    time.Duration
	preloadGroup sync.WaitGroup
	closeOnce    sync.Once
	done         chan struct{}
	now          func() time.Time
}

// New builds a machine for the given candidate. snapshots, scorer and
// sink may be nil.
func New(profile candidate.Profile, acquirer Acquirer, snapshots SnapshotStore, scorer Scorer, log logger.Logger, sink telemetry.Sink, opts Options) *Machine {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if opts.SnapshotFreshness <= 0 {
		opts.SnapshotFreshness = DefaultOptions().SnapshotFreshness
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = DefaultOptions().AutosaveInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultOptions().TickInterval
	}
	if opts.PreloadThreshold <= 0 {
		opts.PreloadThreshold = DefaultOptions().PreloadThreshold
	}

	return &Machine{
		state: State{
			Phase:       PhaseInitializing,
			CandidateID: profile.ID,
		},
		profile:    profile,
		acquirer:   acquirer,
		snapshots:  snapshots,
		scorer:     scorer,
		sink:       sink,
		log:        log.Named("assessment"),
		opts:       opts,
		preloading: make(map[int]bool),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Initialize restores a fresh-enough saved session, or starts a new
// one at section 0 and acquires its questions.
func (m *Machine) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if restored := m.tryRestore(ctx); restored {
		m.log.Info(ctx, "session restored",
			logger.String("session", m.state.SessionID),
			logger.Int("section", m.state.CurrentSection))
		return nil
	}

	m.state = State{
		SessionID:            uuid.NewString(),
		CandidateID:          m.profile.ID,
		Phase:                PhaseSectionLoading,
		Sections:             DefaultSections(),
		Answers:              make(map[string]string),
		TimeRemainingSeconds: int(TotalBudget(DefaultSections()).Seconds()),
		StartedAt:            m.now(),
		UpdatedAt:            m.now(),
	}

	m.loadSectionLocked(ctx, 0)
	m.state.Phase = PhaseQuestionActive
	m.saveLocked(ctx)
	return nil
}

// tryRestore loads the latest session snapshot if it is within the
// freshness window. Corrupt or stale snapshots are discarded.
func (m *Machine) tryRestore(ctx context.Context) bool {
	if m.snapshots == nil {
		return false
	}
	data, takenAt, err := m.snapshots.LatestSession(ctx, m.profile.ID)
	if err != nil {
		m.log.Warn(ctx, "snapshot read failed, starting fresh", logger.Error(err))
		return false
	}
	if data == "" || m.now().Sub(takenAt) > m.opts.SnapshotFreshness {
		return false
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		m.log.Warn(ctx, "snapshot corrupt, starting fresh", logger.Error(err))
		return false
	}
	if !restorable(&st) {
		m.log.Warn(ctx, "snapshot inconsistent, starting fresh",
			logger.String("session", st.SessionID))
		return false
	}
	if st.Answers == nil {
		st.Answers = make(map[string]string)
	}
	m.state = st
	return true
}

// restorable rejects snapshots whose indices no longer make sense.
func restorable(st *State) bool {
	if len(st.Sections) == 0 || st.Phase == PhaseAssessmentComplete {
		return false
	}
	if st.CurrentSection < 0 || st.CurrentSection >= len(st.Sections) {
		return false
	}
	sec := st.Sections[st.CurrentSection]
	if sec.Loaded && (st.CurrentQuestion < 0 || st.CurrentQuestion >= len(sec.Questions)) {
		return false
	}
	return st.TimeRemainingSeconds > 0
}

// SelectAnswer records the candidate's answer for an issued question
// and snapshots the session. Empty or unknown ids are rejected with an
// InvalidOperationError and leave the state untouched.
func (m *Machine) SelectAnswer(ctx context.Context, questionID, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase == PhaseAssessmentComplete {
		return &InvalidOperationError{Op: "selectAnswer", Reason: "assessment already complete"}
	}
	if questionID == "" {
		return &InvalidOperationError{Op: "selectAnswer", Reason: "empty question id"}
	}
	if !m.state.issued(questionID) {
		return &InvalidOperationError{Op: "selectAnswer", Reason: "unknown question id " + questionID}
	}

	m.state.Answers[questionID] = answer
	m.state.UpdatedAt = m.now()

	m.sink.Emit(ctx, telemetry.Event{
		Name:      telemetry.EventAnswer,
		SessionID: m.state.SessionID,
		Data: map[string]any{
			"questionId": questionID,
			"section":    m.state.CurrentSection,
		},
	})
	m.saveLocked(ctx)
	m.maybePreloadLocked(ctx)
	return nil
}

// NextQuestion advances within the current section. At the last
// question it is a no-op: completion goes through CompleteSection.
func (m *Machine) NextQuestion() {
	m.mu.Lock()
	defer m.mu.Unlock()

	sec := m.state.currentSection()
	if sec == nil || m.state.Phase != PhaseQuestionActive {
		return
	}
	if m.state.CurrentQuestion < len(sec.Questions)-1 {
		m.state.CurrentQuestion++
	}
}

// PreviousQuestion moves back one question, crossing into the prior
// section's last question when at index 0 of a later section. At the
// absolute start it is a no-op.
func (m *Machine) PreviousQuestion() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseQuestionActive {
		return
	}
	if m.state.CurrentQuestion > 0 {
		m.state.CurrentQuestion--
		return
	}
	if m.state.CurrentSection > 0 {
		prev := m.state.CurrentSection - 1
		m.state.CurrentSection = prev
		if n := len(m.state.Sections[prev].Questions); n > 0 {
			m.state.CurrentQuestion = n - 1
		} else {
			m.state.CurrentQuestion = 0
		}
	}
}

// CompleteSection marks the current section finished. With sections
// remaining it advances and acquires the next set; on the last section
// it transitions to AssessmentComplete and runs the scorer.
func (m *Machine) CompleteSection(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeSectionLocked(ctx)
}

func (m *Machine) completeSectionLocked(ctx context.Context) {
	if m.state.Phase == PhaseAssessmentComplete {
		return
	}
	sec := m.state.currentSection()
	if sec == nil {
		return
	}

	sec.Completed = true
	m.state.Phase = PhaseSectionComplete
	m.state.UpdatedAt = m.now()
	m.sink.Emit(ctx, telemetry.Event{
		Name:      telemetry.EventSectionComplete,
		SessionID: m.state.SessionID,
		Data: map[string]any{
			"section": sec.ID,
			"phase":   string(m.state.Phase),
		},
	})

	if m.state.CurrentSection < len(m.state.Sections)-1 {
		m.state.Phase = PhaseSectionLoading
		m.state.CurrentSection++
		m.state.CurrentQuestion = 0
		m.loadSectionLocked(ctx, m.state.CurrentSection)
		m.state.Phase = PhaseQuestionActive
		m.saveLocked(ctx)
		return
	}

	m.finalizeLocked(ctx)
}

// finalizeLocked transitions to the terminal state and produces the
// report.
func (m *Machine) finalizeLocked(ctx context.Context) {
	m.state.Phase = PhaseAssessmentComplete
	m.state.UpdatedAt = m.now()

	if m.scorer != nil {
		outcomes := make([]score.SectionOutcome, len(m.state.Sections))
		for i, sec := range m.state.Sections {
			outcomes[i] = score.SectionOutcome{
				ID:         sec.ID,
				Type:       sec.Type,
				Categories: sec.Categories,
				Questions:  sec.Questions,
			}
		}
		m.report = m.scorer.Score(outcomes, m.state.Answers)

		if m.snapshots != nil && m.report != nil {
			if raw, err := json.Marshal(m.report); err == nil {
				if err := m.snapshots.SaveReport(ctx, m.profile.ID, string(raw)); err != nil {
					m.log.Warn(ctx, "report save failed", logger.Error(err))
				}
			}
		}
		m.sink.Emit(ctx, telemetry.Event{
			Name:      telemetry.EventReport,
			SessionID: m.state.SessionID,
			Data:      map[string]any{"aggregate": m.report.Aggregate},
		})
	}

	m.saveLocked(ctx)
	m.log.Info(ctx, "assessment complete", logger.String("session", m.state.SessionID))
}

// Tick decrements the countdown by elapsed and handles expiry and
// periodic autosave. Reaching zero completes every remaining section.
func (m *Machine) Tick(ctx context.Context, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase == PhaseAssessmentComplete || m.state.Phase == PhaseInitializing {
		return
	}

	secs := int(elapsed.Seconds())
	if secs < 1 {
		secs = 1
	}
	m.state.TimeRemainingSeconds -= secs
	if m.state.TimeRemainingSeconds <= 0 {
		m.state.TimeRemainingSeconds = 0
		m.expireLocked(ctx)
		return
	}

	m.sinceSave += elapsed
	if m.sinceSave >= m.opts.AutosaveInterval {
		m.sinceSave = 0
		m.saveLocked(ctx)
		m.sink.Emit(ctx, telemetry.Event{
			Name:      telemetry.EventAutosave,
			SessionID: m.state.SessionID,
		})
	}
}

// expireLocked force-completes everything once the global budget is
// exhausted: unanswered questions simply score as wrong.
func (m *Machine) expireLocked(ctx context.Context) {
	m.log.Info(ctx, "time expired",
		logger.String("session", m.state.SessionID),
		logger.Int("section", m.state.CurrentSection))

	for i := range m.state.Sections {
		m.state.Sections[i].Completed = true
	}
	m.finalizeLocked(ctx)
}

// Run drives the countdown until the context ends, the machine is
// closed, or the assessment completes.
func (m *Machine) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.Tick(ctx, m.opts.TickInterval)
			m.mu.Lock()
			finished := m.state.Phase == PhaseAssessmentComplete
			m.mu.Unlock()
			if finished {
				return
			}
		}
	}
}

// Close stops the timer, waits for in-flight preloads, and takes one
// final snapshot.
func (m *Machine) Close(ctx context.Context) {
	m.closeOnce.Do(func() {
		close(m.done)
		m.preloadGroup.Wait()

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state.Phase != PhaseInitializing {
			m.saveLocked(ctx)
		}
	})
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Report returns the final score report, or nil before completion.
func (m *Machine) Report() *score.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}

// loadSectionLocked acquires questions for the section at idx unless
// it is already populated. Acquisition cannot fail, only degrade; the
// state-level cacheSource records the latest provenance.
func (m *Machine) loadSectionLocked(ctx context.Context, idx int) {
	sec := &m.state.Sections[idx]
	if sec.Loaded && len(sec.Questions) > 0 {
		return
	}

	res := m.acquirer.Acquire(ctx, m.acquireRequest(*sec))
	sec.Questions = res.Questions
	sec.Loaded = true
	m.state.CacheSource = res.Provenance
}

func (m *Machine) acquireRequest(sec Section) acquire.Request {
	return acquire.Request{
		SectionID:   sec.ID,
		SectionType: sec.Type,
		SessionID:   m.state.SessionID,
		Profile:     m.profile,
	}
}

// maybePreloadLocked acquires the next section in the background once
// enough of the current section is answered. The result is applied
// against the machine's live state, not a stale copy, and only if the
// section is still unloaded by then.
func (m *Machine) maybePreloadLocked(ctx context.Context) {
	next := m.state.CurrentSection + 1
	if next >= len(m.state.Sections) || m.preloading[next] {
		return
	}
	sec := m.state.currentSection()
	if sec == nil || len(sec.Questions) == 0 {
		return
	}

	answered := 0
	for _, q := range sec.Questions {
		if _, ok := m.state.Answers[q.ID]; ok {
			answered++
		}
	}
	if float64(answered) < m.opts.PreloadThreshold*float64(len(sec.Questions)) {
		return
	}
	if m.state.Sections[next].Loaded {
		return
	}

	m.preloading[next] = true
	req := m.acquireRequest(m.state.Sections[next])
	m.preloadGroup.Add(1)

	// The preload must outlive the triggering request.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer m.preloadGroup.Done()
		res := m.acquirer.Acquire(bg, req)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state.Phase == PhaseAssessmentComplete {
			return
		}
		target := &m.state.Sections[next]
		if target.Loaded {
			return
		}
		target.Questions = res.Questions
		target.Loaded = true
		m.log.Debug(bg, "section preloaded",
			logger.String("section", target.ID),
			logger.String("provenance", string(res.Provenance)))
	}()
}

// saveLocked persists a best-effort session snapshot.
func (m *Machine) saveLocked(ctx context.Context) {
	if m.snapshots == nil {
		return
	}
	raw, err := json.Marshal(m.state)
	if err != nil {
		m.log.Warn(ctx, "snapshot encode failed", logger.Error(err))
		return
	}
	if err := m.snapshots.SaveSession(ctx, m.profile.ID, string(raw)); err != nil {
		m.log.Warn(ctx, "snapshot save failed",
			logger.String("session", m.state.SessionID),
			logger.Error(err))
	}
}
