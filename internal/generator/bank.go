package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/mathdaily/backend/internal/models"
)

// BankClient serves problems from a built-in template bank. It backs
// development and offline use; the templates are deliberately small but
// cover every school level.
type BankClient struct {
	rng *rand.Rand
}

func NewBankClient(rng *rand.Rand) *BankClient {
	return &BankClient{rng: rng}
}

// Generate satisfies LLMClient; without a structured request it renders a
// default elementary worksheet.
func (b *BankClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	content := b.ProblemsJSON(models.GenerateRequest{
		Count:       10,
		SchoolLevel: models.SchoolElementary,
		Grade:       3,
		Difficulty:  models.DifficultyMedium,
	})
	return &LLMResponse{Content: content}, nil
}

// ProblemsJSON renders a batch for one request in the same JSON envelope
// the LLM providers return, so the parse path is shared.
func (b *BankClient) ProblemsJSON(req models.GenerateRequest) string {
	count := req.Count
	if count < 1 {
		count = 10
	}
	if count > maxBatchSize {
		count = maxBatchSize
	}

	mix := difficultyMix(req.Difficulty)
	templates := templatesForLevel(req.SchoolLevel, req.Grade)

	items := make([]rawProblem, 0, count)
	for i := 0; i < count; i++ {
		diff := mix[i%len(mix)]
		tmpl := b.pickTemplate(templates, diff)
		if tmpl == nil {
			continue
		}

		question, answer := tmpl.generate(b.rng)
		question = cleanMathText(question)
		answer = cleanMathText(answer)

		items = append(items, rawProblem{
			Topic:       tmpl.topic,
			Difficulty:  difficultyToInt(diff),
			Type:        tmpl.kind,
			Question:    question,
			Answer:      answer,
			Options:     []string{},
			Explanation: "",
			SVG:         "",
		})
	}

	out, _ := json.Marshal(generatedBatch{Problems: items})
	return string(out)
}

// difficultyMix biases a batch toward the requested level while keeping a
// spread: easy mixes in some medium, hard keeps a medium warmup.
func difficultyMix(d models.Difficulty) []models.Difficulty {
	switch d {
	case models.DifficultyEasy:
		return mixOf(7, models.DifficultyEasy, 3, models.DifficultyMedium, 0, models.DifficultyHard)
	case models.DifficultyHard:
		return mixOf(0, models.DifficultyEasy, 3, models.DifficultyMedium, 7, models.DifficultyHard)
	default:
		return mixOf(2, models.DifficultyEasy, 6, models.DifficultyMedium, 2, models.DifficultyHard)
	}
}

func mixOf(nEasy int, easy models.Difficulty, nMed int, med models.Difficulty, nHard int, hard models.Difficulty) []models.Difficulty {
	mix := make([]models.Difficulty, 0, nEasy+nMed+nHard)
	for i := 0; i < nEasy; i++ {
		mix = append(mix, easy)
	}
	for i := 0; i < nMed; i++ {
		mix = append(mix, med)
	}
	for i := 0; i < nHard; i++ {
		mix = append(mix, hard)
	}
	return mix
}

func difficultyToInt(d models.Difficulty) int {
	switch d {
	case models.DifficultyHard:
		return 3
	case models.DifficultyMedium:
		return 2
	default:
		return 1
	}
}

func (b *BankClient) pickTemplate(templates map[models.Difficulty][]template, diff models.Difficulty) *template {
	candidates := templates[diff]
	if len(candidates) == 0 {
		for _, fallback := range []models.Difficulty{models.DifficultyMedium, models.DifficultyEasy, models.DifficultyHard} {
			if len(templates[fallback]) > 0 {
				candidates = templates[fallback]
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[b.rng.Intn(len(candidates))]
}

// ── Templates ──────────────────────────────────────────────

type template struct {
	topic    string
	kind     string
	generate func(rng *rand.Rand) (question, answer string)
}

func randInt(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

var caretPattern = regexp.MustCompile(`(\w)\^(\d+)`)

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
}

func toSuperscript(n int) string {
	var b strings.Builder
	for _, c := range fmt.Sprintf("%d", n) {
		if sup, ok := superscripts[c]; ok {
			b.WriteRune(sup)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// cleanMathText normalizes notation: caret exponents become unicode
// superscripts and * becomes ×.
func cleanMathText(text string) string {
	cleaned := caretPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := caretPattern.FindStringSubmatch(m)
		var sup strings.Builder
		for _, c := range parts[2] {
			if s, ok := superscripts[c]; ok {
				sup.WriteRune(s)
			}
		}
		return parts[1] + sup.String()
	})
	return strings.ReplaceAll(cleaned, "*", "×")
}

func templatesForLevel(level models.SchoolLevel, grade int) map[models.Difficulty][]template {
	var byGrade map[int]map[models.Difficulty][]template
	switch level {
	case models.SchoolMiddle:
		byGrade = middleTemplates
	case models.SchoolHigh:
		byGrade = highTemplates
	default:
		byGrade = elementaryTemplates
	}
	if templates, ok := byGrade[grade]; ok {
		return templates
	}
	return byGrade[1]
}

var elementaryTemplates = map[int]map[models.Difficulty][]template{
	1: {
		models.DifficultyEasy: {
			{topic: "덧셈(한자리)", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 1, 9), randInt(rng, 1, 9)
				return fmt.Sprintf("%d + %d = ?", a, b), fmt.Sprintf("%d", a+b)
			}},
			{topic: "뺄셈(한자리)", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a := randInt(rng, 5, 9)
				b := randInt(rng, 1, a)
				return fmt.Sprintf("%d - %d = ?", a, b), fmt.Sprintf("%d", a-b)
			}},
		},
		models.DifficultyMedium: {
			{topic: "덧셈(두자리)", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 10, 50), randInt(rng, 1, 9)
				return fmt.Sprintf("%d + %d = ?", a, b), fmt.Sprintf("%d", a+b)
			}},
		},
		models.DifficultyHard: {
			{topic: "문장제", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 2, 5), randInt(rng, 2, 5)
				return fmt.Sprintf("사과가 %d개, 귤이 %d개 있습니다. 과일은 모두 몇 개인가요?", a, b), fmt.Sprintf("%d", a+b)
			}},
		},
	},
	2: {
		models.DifficultyEasy: {
			{topic: "곱셈구구", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 2, 5), randInt(rng, 1, 9)
				return fmt.Sprintf("%d × %d = ?", a, b), fmt.Sprintf("%d", a*b)
			}},
		},
		models.DifficultyMedium: {
			{topic: "세 자리 수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 100, 500), randInt(rng, 10, 99)
				return fmt.Sprintf("%d + %d = ?", a, b), fmt.Sprintf("%d", a+b)
			}},
		},
		models.DifficultyHard: {
			{topic: "길이 재기", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "1m 20cm는 몇 cm인가요?", "120"
			}},
		},
	},
	6: {
		models.DifficultyEasy: {
			{topic: "분수 나눗셈", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "3 ÷ 1/2 = ?", "6"
			}},
		},
		models.DifficultyMedium: {
			{topic: "소수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "1.2 × 0.5 = ?", "0.6"
			}},
		},
		models.DifficultyHard: {
			{topic: "비와 비율", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "소금 20g, 물 80g인 소금물의 농도는 몇 %인가요?", "20"
			}},
		},
	},
}

var middleTemplates = map[int]map[models.Difficulty][]template{
	1: {
		models.DifficultyEasy: {
			{topic: "소인수분해", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "12를 소인수분해하면?", "2²×3"
			}},
			{topic: "정수와 유리수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 2, 9), randInt(rng, 2, 9)
				return fmt.Sprintf("(-%d) × (+%d) = ?", a, b), fmt.Sprintf("%d", -a*b)
			}},
		},
		models.DifficultyMedium: {
			{topic: "일차방정식", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				x := randInt(rng, 2, 9)
				b := randInt(rng, 1, 10)
				return fmt.Sprintf("2x - %d = %d 일 때, x의 값은?", b, 2*x-b), fmt.Sprintf("%d", x)
			}},
		},
		models.DifficultyHard: {
			{topic: "좌표평면", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "점 A(-2, 3)은 제 몇 사분면 위의 점인가요? (숫자만)", "2"
			}},
		},
	},
	2: {
		models.DifficultyEasy: {
			{topic: "식의 계산", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 2, 5), randInt(rng, 2, 5)
				return fmt.Sprintf("%da + %da = ?", a, b), fmt.Sprintf("%da", a+b)
			}},
		},
		models.DifficultyMedium: {
			{topic: "연립방정식", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				x := randInt(rng, 2, 9)
				y := randInt(rng, 1, x-1)
				return fmt.Sprintf("x + y = %d, x - y = %d 일 때 x는?", x+y, x-y), fmt.Sprintf("%d", x)
			}},
		},
		models.DifficultyHard: {
			{topic: "부등식", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a := randInt(rng, 2, 5)
				k := randInt(rng, 3, 8)
				rhs := a*k + randInt(rng, 1, a-1)
				return fmt.Sprintf("%dx < %d 을 만족하는 가장 큰 정수는?", a, rhs), fmt.Sprintf("%d", k)
			}},
		},
	},
	3: {
		models.DifficultyEasy: {
			{topic: "제곱근", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "√16 + √9 = ?", "7"
			}},
		},
		models.DifficultyMedium: {
			{topic: "이차방정식", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "x² - 5x + 6 = 0 의 해 중 작은 수는?", "2"
			}},
		},
		models.DifficultyHard: {
			{topic: "삼각비", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "sin 30° + cos 60° = ? (소수로)", "1"
			}},
		},
	},
}

var highTemplates = map[int]map[models.Difficulty][]template{
	1: {
		models.DifficultyEasy: {
			{topic: "다항식", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "(x+1)(x-1)을 전개하면?", "x²-1"
			}},
		},
		models.DifficultyMedium: {
			{topic: "복소수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "i² = ?", "-1"
			}},
		},
		models.DifficultyHard: {
			{topic: "원과 직선", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "원 x²+y²=1 과 직선 y=x 의 교점의 개수는?", "2"
			}},
		},
	},
	2: {
		models.DifficultyEasy: {
			{topic: "지수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "2³ × 2² = 2의 몇 승?", "5"
			}},
		},
		models.DifficultyMedium: {
			{topic: "미분", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "f(x) = x² 일 때 f'(3) = ?", "6"
			}},
		},
		models.DifficultyHard: {
			{topic: "수열", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "첫째항 1, 공비 2인 등비수열의 5번째 항은?", "16"
			}},
		},
	},
	3: {
		models.DifficultyEasy: {
			{topic: "극한", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a := randInt(rng, 1, 10)
				n := randInt(rng, 1, 3)
				return fmt.Sprintf("lim(x→∞) %d/x%s = ?", a, toSuperscript(n)), "0"
			}},
			{topic: "수열의 극한", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a, b := randInt(rng, 2, 5), randInt(rng, 1, 9)
				return fmt.Sprintf("lim(n→∞) (%dn + %d) / n = ?", a, b), fmt.Sprintf("%d", a)
			}},
		},
		models.DifficultyMedium: {
			{topic: "확률", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				coin := randInt(rng, 2, 4)
				denom := 1 << uint(coin)
				return fmt.Sprintf("동전 %d개를 던져 모두 앞면이 나올 확률은? (분수, 예: 1/%d)", coin, denom), fmt.Sprintf("1/%d", denom)
			}},
			{topic: "통계", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				m, s := randInt(rng, 50, 70), randInt(rng, 2, 5)
				return fmt.Sprintf("평균 %d, 표준편차 %d인 정규분포에서 평균일 때 Z값은?", m, s), "0"
			}},
			{topic: "미분계수", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a := randInt(rng, 2, 5)
				x := randInt(rng, 1, 3)
				return fmt.Sprintf("f(x) = %dx² 일 때 x=%d에서의 미분계수는?", a, x), fmt.Sprintf("%d", 2*a*x)
			}},
		},
		models.DifficultyHard: {
			{topic: "적분", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				a := randInt(rng, 2, 5)
				return fmt.Sprintf("∫(0 to 1) %dx² dx = ?", a*3), fmt.Sprintf("%d", a)
			}},
			{topic: "여러가지 미분법", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "y = ln(x) 일 때, x=e 에서의 미분계수는? (예: 1/e)", "1/e"
			}},
			{topic: "부분적분", kind: "short", generate: func(rng *rand.Rand) (string, string) {
				return "∫ x e^x dx = (x-1)e^x + C. 그렇다면 ∫(0 to 1) x e^x dx 의 값은?", "1"
			}},
		},
	},
}
