package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mathdaily/backend/internal/models"
)

func testProblems(n int) []models.Problem {
	problems := make([]models.Problem, n)
	for i := 0; i < n; i++ {
		problems[i] = models.Problem{
			ID:         fmt.Sprintf("p%d", i+1),
			OrderNum:   i + 1,
			Question:   fmt.Sprintf("%d + %d = ?", i, i),
			Answer:     fmt.Sprintf("%d", i+i),
			Options:    []string{"a", "b", "c", fmt.Sprintf("%d", i+i)},
			Type:       "drill",
			Topic:      fmt.Sprintf("topic-%d", i%3),
			Difficulty: models.DifficultyMedium,
		}
	}
	return problems
}

// answerAll grades every problem; wrong answers are submitted for the
// problem IDs listed in wrongIDs.
func answerAll(t *testing.T, s *Session, wrongIDs map[string]bool) {
	t.Helper()
	for {
		p, ok := s.Current()
		if !ok {
			t.Fatal("no current problem")
		}
		answer := p.Answer
		if wrongIDs[p.ID] {
			answer = "wrong"
		}
		s.SelectOption(p.ID, answer)
		if graded, err := s.ConfirmAnswer(context.Background()); err != nil || !graded {
			t.Fatalf("confirm %s: graded=%v err=%v", p.ID, graded, err)
		}
		if !s.Advance() {
			return
		}
	}
}

func TestConfirmWithoutSelectionIsNoOp(t *testing.T) {
	s := New(testProblems(3))

	graded, err := s.ConfirmAnswer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graded {
		t.Error("confirm without selection must not grade")
	}
	if s.State() != Presenting {
		t.Errorf("state changed to %v", s.State())
	}
}

func TestConfirmGradesOnce(t *testing.T) {
	s := New(testProblems(1))
	p, _ := s.Current()
	s.SelectOption(p.ID, p.Answer)

	first, err := s.ConfirmAnswer(context.Background())
	if err != nil || !first {
		t.Fatalf("first confirm: graded=%v err=%v", first, err)
	}

	second, err := s.ConfirmAnswer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second {
		t.Error("second confirm must be a no-op")
	}
}

func TestSelectAfterSubmitIgnored(t *testing.T) {
	s := New(testProblems(1))
	p, _ := s.Current()
	s.SelectOption(p.ID, p.Answer)
	if _, err := s.ConfirmAnswer(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.SelectOption(p.ID, "something else")
	state, _ := s.Answer(p.ID)
	if state.SelectedOption != p.Answer {
		t.Error("selection must be frozen after submission")
	}
}

func TestAdvanceBlockedWhileUnsubmitted(t *testing.T) {
	s := New(testProblems(3))

	if s.Advance() {
		t.Error("advance must not move past an unsubmitted problem")
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("cursor moved to %d", s.CurrentIndex())
	}
}

func TestGoBackAlwaysAllowed(t *testing.T) {
	s := New(testProblems(3))
	p, _ := s.Current()
	s.SelectOption(p.ID, p.Answer)
	if _, err := s.ConfirmAnswer(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.Advance() {
		t.Fatal("advance failed")
	}

	if !s.GoBack() {
		t.Error("backward motion must be permitted")
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("cursor at %d after going back", s.CurrentIndex())
	}
	if s.GoBack() {
		t.Error("cannot go back past the first problem")
	}
}

func TestFinishRequiresLastGraded(t *testing.T) {
	s := New(testProblems(2))

	if _, err := s.Finish(); err == nil {
		t.Error("finish must fail before the last problem is graded")
	}
}

func TestSummaryInvariants(t *testing.T) {
	s := New(testProblems(10))
	wrong := map[string]bool{"p2": true, "p5": true, "p8": true}
	answerAll(t, s, wrong)

	summary, err := s.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	if summary.CorrectCount != 7 {
		t.Errorf("correctCount = %d, want 7", summary.CorrectCount)
	}
	if summary.ScorePercent != 70 {
		t.Errorf("scorePercent = %d, want 70", summary.ScorePercent)
	}
	if len(summary.IncorrectProblems) != 3 {
		t.Errorf("incorrectProblems = %d, want 3", len(summary.IncorrectProblems))
	}
	if got := summary.TotalCount - summary.CorrectCount; got != len(summary.IncorrectProblems) {
		t.Errorf("incorrect count mismatch: %d vs %d", got, len(summary.IncorrectProblems))
	}

	// Topics repeat every 3 problems, so 3 distinct wrong problems with
	// different topic labels stay distinct after dedup.
	seen := map[string]bool{}
	for _, topic := range summary.IncorrectTopics {
		if seen[topic] {
			t.Errorf("duplicate topic %q in summary", topic)
		}
		seen[topic] = true
	}
}

func TestScoreRounding(t *testing.T) {
	s := New(testProblems(3))
	answerAll(t, s, map[string]bool{"p3": true})

	summary, err := s.Finish()
	if err != nil {
		t.Fatal(err)
	}
	// 2/3 = 66.67, rounds to 67.
	if summary.ScorePercent != 67 {
		t.Errorf("scorePercent = %d, want 67", summary.ScorePercent)
	}
}

func TestRetryIncorrect(t *testing.T) {
	s := New(testProblems(10))
	wrong := map[string]bool{"p2": true, "p5": true, "p8": true}
	answerAll(t, s, wrong)
	if _, err := s.Finish(); err != nil {
		t.Fatal(err)
	}

	if err := s.RetryIncorrect(); err != nil {
		t.Fatalf("retry: %v", err)
	}

	problems := s.Problems()
	if len(problems) != 3 {
		t.Fatalf("expected 3 retry problems, got %d", len(problems))
	}
	for i, p := range problems {
		if p.OrderNum != i+1 {
			t.Errorf("problem %d has orderNum %d", i, p.OrderNum)
		}
		if wrong[p.ID] {
			t.Errorf("retry problem %d reused old id %s", i, p.ID)
		}
		state, ok := s.Answer(p.ID)
		if !ok {
			t.Fatalf("no answer state for %s", p.ID)
		}
		if state.Submitted || state.SelectedOption != "" {
			t.Errorf("answer state for %s not reset", p.ID)
		}
	}
	if s.State() != Presenting || s.CurrentIndex() != 0 {
		t.Error("retry must return to presenting the first problem")
	}
}

func TestRetryRequiresCompletion(t *testing.T) {
	s := New(testProblems(2))
	if err := s.RetryIncorrect(); err == nil {
		t.Error("retry must fail before completion")
	}
}

func TestRetryWithPerfectScore(t *testing.T) {
	s := New(testProblems(2))
	answerAll(t, s, nil)
	if _, err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := s.RetryIncorrect(); err == nil {
		t.Error("retry must fail with nothing to retry")
	}
}

func TestGraderFailureLeavesUnsubmitted(t *testing.T) {
	failing := func(ctx context.Context, p models.Problem, submitted string) (bool, error) {
		return false, fmt.Errorf("grading backend down")
	}
	s := New(testProblems(1), WithGrader(failing))
	p, _ := s.Current()
	s.SelectOption(p.ID, p.Answer)

	if _, err := s.ConfirmAnswer(context.Background()); err == nil {
		t.Fatal("expected grader error")
	}

	state, _ := s.Answer(p.ID)
	if state.Submitted {
		t.Error("failed grading must leave the entry unsubmitted")
	}

	// The user can retry after the failure clears.
	s.grade = ExactMatchGrader
	graded, err := s.ConfirmAnswer(context.Background())
	if err != nil || !graded {
		t.Errorf("retry after failure: graded=%v err=%v", graded, err)
	}
}

func TestConcurrentConfirmGradesOnce(t *testing.T) {
	var grades int
	var mu sync.Mutex
	slowGrader := func(ctx context.Context, p models.Problem, submitted string) (bool, error) {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		grades++
		mu.Unlock()
		return true, nil
	}

	s := New(testProblems(1), WithGrader(slowGrader))
	p, _ := s.Current()
	s.SelectOption(p.ID, p.Answer)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ConfirmAnswer(context.Background())
		}()
	}
	wg.Wait()

	if grades != 1 {
		t.Errorf("grader ran %d times, want 1", grades)
	}
}

func TestGradingPolicy(t *testing.T) {
	tests := []struct {
		answer    string
		submitted string
		want      bool
	}{
		{"7", "7", true},
		{"7", " 7 ", true},
		{"x²-1", "X²-1", true},
		{"0.5", "1/2", false},
		{"7", "8", false},
	}

	for _, tt := range tests {
		got, err := ExactMatchGrader(context.Background(), models.Problem{Answer: tt.answer}, tt.submitted)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("grade(%q, %q) = %v, want %v", tt.answer, tt.submitted, got, tt.want)
		}
	}
}

func TestTimeSpent(t *testing.T) {
	current := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	s := New(testProblems(1), WithClock(clock))
	p, _ := s.Current()

	current = current.Add(42 * time.Second)
	s.SelectOption(p.ID, p.Answer)
	if _, err := s.ConfirmAnswer(context.Background()); err != nil {
		t.Fatal(err)
	}

	state, _ := s.Answer(p.ID)
	if state.TimeSpentSeconds != 42 {
		t.Errorf("timeSpentSeconds = %d, want 42", state.TimeSpentSeconds)
	}
}

func TestMissingDiagramsFilledIn(t *testing.T) {
	problems := []models.Problem{{
		ID:       "geo1",
		OrderNum: 1,
		Question: "두 수 -3, 5가 표시된 수직선에서 두 수 사이의 거리는?",
		Answer:   "8",
		Topic:    "수직선",
	}}

	s := New(problems)
	p, _ := s.Current()
	if p.SVG == "" {
		t.Error("missing illustration should be synthesized at load")
	}
}

func TestProvidedDiagramKept(t *testing.T) {
	problems := []models.Problem{{
		ID:       "geo2",
		OrderNum: 1,
		Question: "두 수 -3, 5가 표시된 수직선에서 두 수 사이의 거리는?",
		Answer:   "8",
		Topic:    "수직선",
		SVG:      "<svg>custom</svg>",
	}}

	s := New(problems)
	p, _ := s.Current()
	if p.SVG != "<svg>custom</svg>" {
		t.Error("supplied illustrations must not be overwritten")
	}
}
