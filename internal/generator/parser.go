package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mathdaily/backend/internal/models"
)

type generatedBatch struct {
	Problems []rawProblem `json:"problems"`
}

type rawProblem struct {
	Topic       string   `json:"topic"`
	Difficulty  int      `json:"difficulty"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	SVG         string   `json:"svg"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse decodes a generation response into normalized payloads.
// Items missing a question or answer fail validation; every other field is
// defaulted so a sloppy response still yields usable problems.
func ParseResponse(responseBody string) ([]models.ProblemPayload, error) {
	cleaned := stripCodeFences(responseBody)

	var batch generatedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if len(batch.Problems) == 0 {
		return nil, &ValidationError{Errors: []string{"no problems in batch"}}
	}

	var errs []string
	payloads := make([]models.ProblemPayload, 0, len(batch.Problems))
	for i, p := range batch.Problems {
		num := i + 1
		if strings.TrimSpace(p.Question) == "" {
			errs = append(errs, fmt.Sprintf("problem %d: empty question", num))
			continue
		}
		if strings.TrimSpace(p.Answer) == "" {
			errs = append(errs, fmt.Sprintf("problem %d: empty answer", num))
			continue
		}

		payload := models.ProblemPayload{
			Question:    p.Question,
			Answer:      p.Answer,
			Topic:       p.Topic,
			Type:        p.Type,
			Difficulty:  p.Difficulty,
			Options:     p.Options,
			Explanation: p.Explanation,
			SVG:         p.SVG,
		}
		if payload.Type == "" {
			payload.Type = "drill"
		}
		if payload.Topic == "" {
			payload.Topic = "일반"
		}
		if payload.Options == nil {
			payload.Options = []string{}
		}
		payloads = append(payloads, payload)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return payloads, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
