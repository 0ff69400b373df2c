package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mathdaily/backend/internal/models"
)

// maxBatchSize caps a single generation request; larger worksheets degrade
// response quality and routinely blow the output token budget.
const maxBatchSize = 15

// GradeBand is the display label and topic summary for one grade.
type GradeBand struct {
	Label string
	Desc  string
}

var gradeInfoMap = map[models.SchoolLevel]map[int]GradeBand{
	models.SchoolElementary: {
		1: {"초등학교 1학년", "덧셈, 뺄셈, 수 비교, 모양 찾기"},
		2: {"초등학교 2학년", "두 자리 수 덧뺄셈, 곱셈 기초, 시간과 길이"},
		3: {"초등학교 3학년", "세 자리 수 연산, 분수 기초, 원과 삼각형"},
		4: {"초등학교 4학년", "큰 수, 곱셈과 나눗셈, 분수와 소수, 각도"},
		5: {"초등학교 5학년", "약분과 통분, 분수 연산, 다각형 넓이, 평균"},
		6: {"초등학교 6학년", "비와 비율, 원의 넓이, 비례식, 경우의 수"},
	},
	models.SchoolMiddle: {
		1: {"중학교 1학년", "정수와 유리수, 문자와 식, 일차방정식, 좌표평면"},
		2: {"중학교 2학년", "연립방정식, 부등식, 일차함수, 삼각형 성질"},
		3: {"중학교 3학년", "제곱근, 이차방정식, 이차함수, 피타고라스 정리"},
	},
	models.SchoolHigh: {
		1: {"고등학교 1학년", "다항식, 방정식과 부등식, 도형의 방정식, 집합과 명제"},
		2: {"고등학교 2학년", "함수, 수열, 지수와 로그, 삼각함수"},
		3: {"고등학교 3학년", "미분과 적분, 확률과 통계, 벡터"},
	},
}

// GradeInfo returns the band for one grade, falling back to a generic
// entry for unknown combinations.
func GradeInfo(level models.SchoolLevel, grade int) GradeBand {
	if info, ok := gradeInfoMap[level][grade]; ok {
		return info
	}
	return GradeBand{Label: "학년 미상", Desc: "일반 수학"}
}

// BuildSystemPrompt assembles the system prompt for one worksheet request.
// Topic focus and difficulty addenda are appended after the base prompt so
// later instructions take precedence with the model.
func BuildSystemPrompt(level models.SchoolLevel, grade int, difficulty models.Difficulty, topics []string) string {
	info := GradeInfo(level, grade)

	var b strings.Builder
	fmt.Fprintf(&b, `당신은 대한민국 '최상위권 수학' 전문 출제 위원입니다.
현재 대상 학년은 **[%s]** 입니다.
주요 토픽 예시: %s

단순 연산이나 너무 쉬운 문제는 **절대 출제하지 마세요.**
학생이 문제를 읽고 **논리적으로 추론(Reasoning)하고, 조건을 분석해야만** 풀 수 있는 고품질 문제를 만들어야 합니다.

[대상 학년: %s]
- 해당 학년의 교과 과정을 철저히 준수하세요.
- 고등학생에게 초등 수준의 덧셈/뺄셈 문제를 내면 **해고**됩니다.

[출제 지침]
1. **복합 사고력(Multi-step Reasoning)**: 2단계 이상의 사고가 필요한 문제를 내세요.
2. **실생활 응용 & 문해력**: 텍스트를 읽고 식을 세우는 능력을 평가하세요.
3. **오답 유도(Distractors)**: 보기는 학생이 흔히 범하는 실수를 반영한 매력적인 오답으로 구성하세요.
4. **상세한 해설(Step-by-Step)**: 어떤 개념을 사용해야 하는지부터 시작하여 1, 2, 3단계로 나누어 구체적으로 작성하세요.
5. **객관식 4지선다**: 모든 문제는 반드시 4개의 보기(options)를 포함해야 합니다.

[수학 기호 규칙]
- **거듭제곱**: ^ 대신 유니코드 상첨자: ² ³ ⁴ ⁵
- **곱셈**: * 대신 ×
- **나눗셈**: / 대신 ÷ (분수 표현 제외)

[SVG 생성 지침]
1. 도형/기하 문제는 svg 필드에 시각 자료를 포함하세요. (<svg viewBox="0 0 300 250">)
2. 기하 문제가 아니면 svg: "" (빈 문자열)로 남기세요.

[해설 지침]
모든 문제의 해설은 정답에 이르는 과정을 단계별로 상세하게 설명하세요. 초심자도 이해할 수 있도록 친절하고 구체적으로 작성하세요.

[JSON 형식]
{
  "problems": [
    {
      "topic": "주제",
      "difficulty": 1,
      "type": "drill",
      "question": "문제 지문",
      "svg": "",
      "options": ["보기1", "보기2", "보기3", "보기4"],
      "answer": "정답",
      "explanation": "해설"
    }
  ]
}`, info.Label, info.Desc, info.Label)

	if len(topics) > 0 {
		fmt.Fprintf(&b, "\n\n[특별 지침: 유사 문제 생성]\n다음 주제들에 집중하여 문제를 출제하세요: %s. 해당 개념의 유사 변형 문제를 만들어 학습을 돕습니다.", strings.Join(topics, ", "))
	}

	switch difficulty {
	case models.DifficultyEasy:
		b.WriteString("\n\n[난이도: 기초(Easy)]\n학생이 기초가 부족합니다. 교과서 예제 수준의 **아주 기본적인 개념 확인 문제** 위주로 출제하세요. 복잡한 응용은 피하고, 자신감을 길러주는 데 집중하세요.")
	case models.DifficultyHard:
		b.WriteString("\n\n[난이도: 심화(Hard)]\n학생이 매우 우수합니다. **경시대회(Olympiad) 스타일의 사고력 문제**를 출제하세요. 단순 계산보다는 창의적인 발상이 필요하거나, 함정이 있는 문제를 포함하세요.")
	default:
		b.WriteString("\n\n[난이도: 보통(Medium)]\n현행 교과 과정의 표준 난이도입니다. 개념 이해와 기본 응용력을 골고루 평가하세요.")
	}

	return b.String()
}

type planItem struct {
	Index      int    `json:"index"`
	Difficulty int    `json:"difficulty"`
	Topic      string `json:"topic,omitempty"`
}

// buildPlan lays out per-problem difficulty for a batch: the first 30%
// warm up at 1, the middle band sits at 2, and the rest push to 3. When
// topics are given they cycle across the batch.
func buildPlan(count int, topics []string) []planItem {
	if count > maxBatchSize {
		count = maxBatchSize
	}
	if count < 1 {
		count = 1
	}

	plan := make([]planItem, count)
	for i := 0; i < count; i++ {
		difficulty := 3
		if float64(i) < float64(count)*0.3 {
			difficulty = 1
		} else if float64(i) < float64(count)*0.7 {
			difficulty = 2
		}

		item := planItem{Index: i + 1, Difficulty: difficulty}
		if len(topics) > 0 {
			item.Topic = topics[i%len(topics)]
		}
		plan[i] = item
	}
	return plan
}

// BuildUserPrompt renders the user message. Topic-focused requests get a
// short balancing instruction; regular requests carry the full plan as JSON.
func BuildUserPrompt(count int, topics []string) string {
	plan := buildPlan(count, topics)

	if len(topics) > 0 {
		return fmt.Sprintf("주제별(%s)로 균형 있게 총 %d개의 유사 변형 문제를 생성해줘.", strings.Join(topics, ", "), len(plan))
	}

	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	return fmt.Sprintf("다음 계획에 맞춰 총 %d개의 수학 문제를 생성해줘:\n%s", len(plan), planJSON)
}
