package session

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/mathdaily/backend/internal/models"
)

// seededRand returns a deterministic [0,1) sequence.
func seededRand(seed int64) func() float64 {
	state := uint64(seed)
	return func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>11) / float64(1<<53)
	}
}

func sessionWith(p models.Problem, seed int64) *Session {
	return New([]models.Problem{p}, WithRand(seededRand(seed)))
}

func TestOptionsForProvidedVerbatim(t *testing.T) {
	p := models.Problem{
		ID:      "p1",
		Answer:  "7",
		Options: []string{"5", "6", "7", "8"},
	}
	s := sessionWith(p, 1)

	got := s.OptionsFor("p1")
	want := []string{"5", "6", "7", "8"}
	if len(got) != 4 {
		t.Fatalf("expected 4 options, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d = %q, want %q (provided order must be kept)", i, got[i], want[i])
		}
	}
}

func TestOptionsForNumericAnswer(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		p := models.Problem{ID: "p1", Answer: "12"}
		s := sessionWith(p, seed)

		got := s.OptionsFor("p1")
		if len(got) != 4 {
			t.Fatalf("seed %d: expected 4 options, got %d", seed, len(got))
		}

		distinct := map[string]bool{}
		matches := 0
		for _, opt := range got {
			distinct[opt] = true
			n, err := strconv.ParseFloat(opt, 64)
			if err != nil {
				t.Errorf("seed %d: non-numeric option %q for numeric answer", seed, opt)
				continue
			}
			if n == 12 {
				matches++
			}
		}
		if len(distinct) != 4 {
			t.Errorf("seed %d: options not distinct: %v", seed, got)
		}
		if matches != 1 {
			t.Errorf("seed %d: %d options equal the answer, want 1: %v", seed, matches, got)
		}
	}
}

func TestOptionsForDecimalAnswer(t *testing.T) {
	p := models.Problem{ID: "p1", Answer: "0.6"}
	s := sessionWith(p, 9)

	got := s.OptionsFor("p1")
	if len(got) != 4 {
		t.Fatalf("expected 4 options, got %d", len(got))
	}

	found := false
	for _, opt := range got {
		n, err := strconv.ParseFloat(opt, 64)
		if err != nil {
			t.Fatalf("non-numeric option %q", opt)
		}
		if math.Abs(n-0.6) < 1e-9 {
			found = true
		}
	}
	if !found {
		t.Errorf("answer missing from options: %v", got)
	}
}

func TestOptionsForNonNumericAnswer(t *testing.T) {
	p := models.Problem{ID: "p1", Answer: "x²-1"}
	s := sessionWith(p, 3)

	got := s.OptionsFor("p1")
	if len(got) != 4 {
		t.Fatalf("expected 4 options, got %d", len(got))
	}

	distinct := map[string]bool{}
	for _, opt := range got {
		distinct[opt] = true
	}
	for _, want := range []string{"x²-1", "x²-11", "x²-10", "없음"} {
		if !distinct[want] {
			t.Errorf("missing option %q in %v", want, got)
		}
	}
}

func TestOptionsForStableAcrossCalls(t *testing.T) {
	p := models.Problem{ID: "p1", Answer: "12"}
	s := sessionWith(p, 5)

	first := s.OptionsFor("p1")
	second := s.OptionsFor("p1")
	if len(first) != len(second) {
		t.Fatal("option count changed between calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("option %d changed between calls: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestOptionsForUnknownProblem(t *testing.T) {
	s := New(nil)
	if got := s.OptionsFor("nope"); got != nil {
		t.Errorf("expected nil for unknown problem, got %v", got)
	}
}

func TestOptionsRegeneratedAfterRetry(t *testing.T) {
	// A retry mints new problem IDs, so stale cache entries are unreachable
	// and fresh ones are built on demand.
	p := models.Problem{ID: "p1", OrderNum: 1, Question: "5 + 7 = ?", Answer: "12", Topic: "덧셈"}
	s := New([]models.Problem{p}, WithRand(seededRand(2)))

	s.SelectOption("p1", "wrong")
	if _, err := s.ConfirmAnswer(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := s.RetryIncorrect(); err != nil {
		t.Fatal(err)
	}

	retry, _ := s.Current()
	got := s.OptionsFor(retry.ID)
	if len(got) != 4 {
		t.Fatalf("expected 4 options for retried problem, got %d", len(got))
	}
}
