// Package session holds the worksheet state machine for one sitting: an
// ordered problem list, per-problem answer state, a navigation cursor, and
// the completion/retry transitions. A Session is owned by one user at a
// time; the mutex only covers overlapping HTTP requests for that user.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mathdaily/backend/internal/diagram"
	"github.com/mathdaily/backend/internal/models"
)

// State is the machine's position for the current problem.
type State int

const (
	// Presenting: viewing the current problem, not yet submitted.
	Presenting State = iota
	// Graded: current problem submitted, explanation available.
	Graded
	// Completed: summary shown, terminal until retry.
	Completed
)

func (s State) String() string {
	switch s {
	case Graded:
		return "graded"
	case Completed:
		return "completed"
	default:
		return "presenting"
	}
}

// AnswerState is the mutable attempt record for one problem. Once
// Submitted is set the entry is frozen.
type AnswerState struct {
	SelectedOption   string    `json:"selectedOption,omitempty"`
	SubmittedAnswer  string    `json:"submittedAnswer,omitempty"`
	Submitted        bool      `json:"submitted"`
	IsCorrect        bool      `json:"isCorrect"`
	CorrectAnswer    string    `json:"correctAnswer,omitempty"`
	TimeStarted      time.Time `json:"timeStarted"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
}

// Summary is the derived completion view.
type Summary struct {
	ScorePercent      int              `json:"scorePercent"`
	CorrectCount      int              `json:"correctCount"`
	TotalCount        int              `json:"totalCount"`
	IncorrectProblems []models.Problem `json:"incorrectProblems"`
	IncorrectTopics   []string         `json:"incorrectTopics"`
}

// Grader decides whether a submitted answer is correct. The default is
// trimmed, case-folded string equality; no numeric tolerance and no
// fraction equivalence ("0.5" does not match "1/2").
type Grader func(ctx context.Context, problem models.Problem, submitted string) (bool, error)

func ExactMatchGrader(ctx context.Context, problem models.Problem, submitted string) (bool, error) {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(problem.Answer)), nil
}

// Option configures a Session; tests inject deterministic randomness and
// clocks through these.
type Option func(*Session)

func WithRand(rng func() float64) Option {
	return func(s *Session) { s.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithGrader(g Grader) Option {
	return func(s *Session) { s.grade = g }
}

type Session struct {
	mu sync.Mutex

	problems    []models.Problem
	answers     map[string]*AnswerState
	current     int
	completed   bool
	optionCache map[string][]string

	// pending guards against double grading while a submission for a
	// problem is outstanding.
	pending map[string]bool

	rng   func() float64
	now   func() time.Time
	grade Grader
}

// New wraps a generated batch into a fresh session. Problems without an
// illustration get one synthesized from their topic and question text.
func New(problems []models.Problem, opts ...Option) *Session {
	s := &Session{
		problems:    make([]models.Problem, len(problems)),
		answers:     make(map[string]*AnswerState, len(problems)),
		optionCache: make(map[string][]string),
		pending:     make(map[string]bool),
		rng:         rand.Float64,
		now:         time.Now,
		grade:       ExactMatchGrader,
	}
	for _, opt := range opts {
		opt(s)
	}

	copy(s.problems, problems)
	for i := range s.problems {
		if s.problems[i].SVG == "" {
			s.problems[i].SVG = diagram.Synthesize(s.problems[i].Topic, s.problems[i].Question)
		}
		s.answers[s.problems[i].ID] = &AnswerState{TimeStarted: s.now()}
	}

	return s
}

// ── Accessors ──────────────────────────────────────────────

func (s *Session) Problems() []models.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Problem, len(s.problems))
	copy(out, s.problems)
	return out
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Current returns the problem under the cursor.
func (s *Session) Current() (models.Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.problems) == 0 || s.completed {
		return models.Problem{}, false
	}
	return s.problems[s.current], true
}

// Answer returns a snapshot of one problem's answer state.
func (s *Session) Answer(problemID string) (AnswerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.answers[problemID]
	if !ok {
		return AnswerState{}, false
	}
	return *state, true
}

// State reports the machine position for the current problem.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.completed {
		return Completed
	}
	if len(s.problems) == 0 {
		return Presenting
	}
	if s.answers[s.problems[s.current].ID].Submitted {
		return Graded
	}
	return Presenting
}

// ── Transitions ────────────────────────────────────────────

// SelectOption stages a choice for a problem. Re-selecting overwrites the
// prior choice; submitted and pending entries are left untouched.
func (s *Session) SelectOption(problemID, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.answers[problemID]
	if !ok || state.Submitted || s.pending[problemID] || s.completed {
		return
	}
	state.SelectedOption = option
}

// ConfirmAnswer grades the current problem's staged selection. It is a
// no-op without a selection and idempotent after the first call: a second
// confirm, or one racing an outstanding submission, never grades twice.
// A grader failure leaves the entry unsubmitted so the user can retry.
func (s *Session) ConfirmAnswer(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.completed || len(s.problems) == 0 {
		s.mu.Unlock()
		return false, nil
	}

	problem := s.problems[s.current]
	state := s.answers[problem.ID]
	if state.Submitted || s.pending[problem.ID] || state.SelectedOption == "" {
		s.mu.Unlock()
		return false, nil
	}

	s.pending[problem.ID] = true
	selected := state.SelectedOption
	s.mu.Unlock()

	correct, err := s.grade(ctx, problem, selected)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, problem.ID)

	if err != nil {
		return false, fmt.Errorf("grade answer: %w", err)
	}

	state.SubmittedAnswer = selected
	state.Submitted = true
	state.IsCorrect = correct
	state.TimeSpentSeconds = int(s.now().Sub(state.TimeStarted).Seconds())
	if !correct {
		state.CorrectAnswer = problem.Answer
	}

	return true, nil
}

// Advance moves the cursor forward. It refuses to move past an
// unsubmitted problem and never runs off the end; the last problem's
// graded state waits for Finish.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed || s.stateLocked() != Graded {
		return false
	}
	if s.current+1 >= len(s.problems) {
		return false
	}
	s.current++
	return true
}

// GoBack steps the cursor backward; backward motion is always permitted
// while there is somewhere to go.
func (s *Session) GoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed || s.current == 0 {
		return false
	}
	s.current--
	return true
}

// Finish closes the session and computes the summary. Only valid once the
// last problem has been graded.
func (s *Session) Finish() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.summaryLocked(), nil
	}
	if s.current != len(s.problems)-1 || s.stateLocked() != Graded {
		return nil, fmt.Errorf("cannot finish: last problem not yet graded")
	}

	s.completed = true
	return s.summaryLocked(), nil
}

func (s *Session) summaryLocked() *Summary {
	summary := &Summary{TotalCount: len(s.problems)}

	seenTopics := make(map[string]bool)
	for _, p := range s.problems {
		state := s.answers[p.ID]
		if state.Submitted && state.IsCorrect {
			summary.CorrectCount++
			continue
		}
		summary.IncorrectProblems = append(summary.IncorrectProblems, p)
		if p.Topic != "" && !seenTopics[p.Topic] {
			seenTopics[p.Topic] = true
			summary.IncorrectTopics = append(summary.IncorrectTopics, p.Topic)
		}
	}

	if summary.TotalCount > 0 {
		summary.ScorePercent = int(float64(summary.CorrectCount)/float64(summary.TotalCount)*100 + 0.5)
	}
	return summary
}

// RetryIncorrect replaces the batch with the problems answered wrong,
// re-issued under fresh IDs with orderNum 1..k and reset answer state.
// Only valid from Completed.
func (s *Session) RetryIncorrect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completed {
		return fmt.Errorf("cannot retry: session not completed")
	}

	summary := s.summaryLocked()
	if len(summary.IncorrectProblems) == 0 {
		return fmt.Errorf("cannot retry: no incorrect problems")
	}

	problems := make([]models.Problem, len(summary.IncorrectProblems))
	for i, p := range summary.IncorrectProblems {
		p.ID = uuid.NewString()
		p.OrderNum = i + 1
		problems[i] = p
	}

	s.problems = problems
	s.answers = make(map[string]*AnswerState, len(problems))
	s.optionCache = make(map[string][]string)
	s.pending = make(map[string]bool)
	for _, p := range problems {
		s.answers[p.ID] = &AnswerState{TimeStarted: s.now()}
	}
	s.current = 0
	s.completed = false
	return nil
}
