package session

import (
	"fmt"
	"math"
	"strconv"
)

// OptionsFor returns the 4-choice display list for one problem, built once
// and cached so re-renders are stable for the life of the batch. Problems
// that arrive with 4 or more options keep them verbatim; otherwise three
// distractors are synthesized around the canonical answer.
func (s *Session) OptionsFor(problemID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.optionCache[problemID]; ok {
		return cached
	}

	for _, p := range s.problems {
		if p.ID != problemID {
			continue
		}

		var options []string
		if len(p.Options) >= 4 {
			options = append(options, p.Options...)
		} else {
			options = s.buildOptions(p.Answer)
		}
		s.optionCache[problemID] = options
		return options
	}

	return nil
}

// buildOptions synthesizes a shuffled answer-plus-distractors list.
// Numeric answers get magnitude-scaled offsets; everything else gets
// simple string variants.
func (s *Session) buildOptions(answer string) []string {
	options := []string{answer}

	num, err := strconv.ParseFloat(answer, 64)
	if err == nil && !math.IsInf(num, 0) && !math.IsNaN(num) {
		isInt := num == math.Trunc(num)
		offsets := make(map[float64]bool)
		for len(offsets) < 3 {
			var offset float64
			if isInt {
				limit := int(math.Abs(math.Round(num * 0.3)))
				if limit < 3 {
					limit = 3
				}
				offset = float64(s.randInt(1, limit))
				if s.rng() > 0.5 {
					offset = -offset
				}
			} else {
				offset = float64(s.randInt(1, 10)) / 10
				if s.rng() > 0.5 {
					offset = -offset
				}
			}
			if offset != 0 && !offsets[offset] {
				offsets[offset] = true
				var wrong string
				if isInt {
					wrong = strconv.Itoa(int(num + offset))
				} else {
					wrong = fmt.Sprintf("%.1f", num+offset)
				}
				if wrong == answer || contains(options, wrong) {
					delete(offsets, offset)
					continue
				}
				options = append(options, wrong)
			}
		}
	} else {
		options = append(options, answer+"1", answer+"0", "없음")
	}

	s.shuffle(options)
	return options
}

func (s *Session) randInt(min, max int) int {
	return min + int(s.rng()*float64(max-min+1))
}

// shuffle is Fisher-Yates over the injected random source.
func (s *Session) shuffle(items []string) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(s.rng() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
