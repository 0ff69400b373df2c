package diagram

import (
	"regexp"
	"strconv"
)

var (
	intPattern   = regexp.MustCompile(`-?\d+`)
	pointPattern = regexp.MustCompile(`([A-Z])?\s?\(\s?(-?\d+)\s?,\s?(-?\d+)\s?\)`)
)

// Point is a labeled coordinate pair extracted from question text,
// e.g. "A(2, 3)". Label may be empty.
type Point struct {
	Label string
	X     int
	Y     int
}

// ExtractInts returns every integer literal in s, in order of appearance.
// A leading minus sign is part of the literal.
func ExtractInts(s string) []int {
	matches := intPattern.FindAllString(s, -1)
	if matches == nil {
		return nil
	}
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// ExtractPoints returns every coordinate pair in s, in order of appearance.
func ExtractPoints(s string) []Point {
	matches := pointPattern.FindAllStringSubmatch(s, -1)
	if matches == nil {
		return nil
	}
	points := make([]Point, 0, len(matches))
	for _, m := range matches {
		x, errX := strconv.Atoi(m[2])
		y, errY := strconv.Atoi(m[3])
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, Point{Label: m[1], X: x, Y: y})
	}
	return points
}
