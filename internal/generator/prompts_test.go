package generator

import (
	"strings"
	"testing"

	"github.com/mathdaily/backend/internal/models"
)

func TestBuildSystemPromptGradeBand(t *testing.T) {
	prompt := BuildSystemPrompt(models.SchoolMiddle, 1, models.DifficultyMedium, nil)

	if !strings.Contains(prompt, "중학교 1학년") {
		t.Error("prompt must name the target grade")
	}
	if !strings.Contains(prompt, "일차방정식") {
		t.Error("prompt must carry the grade's topic summary")
	}
	if !strings.Contains(prompt, "[난이도: 보통(Medium)]") {
		t.Error("medium difficulty addendum missing")
	}
	if strings.Contains(prompt, "유사 문제 생성") {
		t.Error("topic focus addendum must not appear without topics")
	}
}

func TestBuildSystemPromptDifficultyAddenda(t *testing.T) {
	easy := BuildSystemPrompt(models.SchoolElementary, 3, models.DifficultyEasy, nil)
	if !strings.Contains(easy, "[난이도: 기초(Easy)]") {
		t.Error("easy addendum missing")
	}

	hard := BuildSystemPrompt(models.SchoolElementary, 3, models.DifficultyHard, nil)
	if !strings.Contains(hard, "[난이도: 심화(Hard)]") {
		t.Error("hard addendum missing")
	}
}

func TestBuildSystemPromptTopicFocus(t *testing.T) {
	prompt := BuildSystemPrompt(models.SchoolMiddle, 2, models.DifficultyMedium, []string{"연립방정식", "부등식"})
	if !strings.Contains(prompt, "연립방정식, 부등식") {
		t.Error("topic list missing from focus addendum")
	}
}

func TestBuildSystemPromptUnknownGrade(t *testing.T) {
	prompt := BuildSystemPrompt(models.SchoolMiddle, 9, models.DifficultyMedium, nil)
	if !strings.Contains(prompt, "학년 미상") {
		t.Error("unknown grades must fall back to the generic band")
	}
}

func TestBuildPlanDifficultyRamp(t *testing.T) {
	plan := buildPlan(10, nil)
	if len(plan) != 10 {
		t.Fatalf("expected 10 items, got %d", len(plan))
	}
	if plan[0].Difficulty != 1 {
		t.Errorf("first item should warm up at 1, got %d", plan[0].Difficulty)
	}
	if plan[4].Difficulty != 2 {
		t.Errorf("middle item should be 2, got %d", plan[4].Difficulty)
	}
	if plan[9].Difficulty != 3 {
		t.Errorf("last item should be 3, got %d", plan[9].Difficulty)
	}
}

func TestBuildPlanCaps(t *testing.T) {
	if got := len(buildPlan(50, nil)); got != maxBatchSize {
		t.Errorf("expected cap at %d, got %d", maxBatchSize, got)
	}
	if got := len(buildPlan(0, nil)); got != 1 {
		t.Errorf("expected floor of 1, got %d", got)
	}
}

func TestBuildPlanTopicCycling(t *testing.T) {
	plan := buildPlan(4, []string{"확률", "통계"})
	want := []string{"확률", "통계", "확률", "통계"}
	for i, item := range plan {
		if item.Topic != want[i] {
			t.Errorf("item %d: topic %q, want %q", i, item.Topic, want[i])
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	plain := BuildUserPrompt(5, nil)
	if !strings.Contains(plain, "총 5개") {
		t.Errorf("plain prompt missing count: %s", plain)
	}
	if !strings.Contains(plain, `"index"`) {
		t.Error("plain prompt must embed the plan JSON")
	}

	focused := BuildUserPrompt(5, []string{"미분"})
	if !strings.Contains(focused, "유사 변형 문제") {
		t.Errorf("topic prompt missing focus instruction: %s", focused)
	}
}
