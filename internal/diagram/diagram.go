// Package diagram renders best-effort SVG illustrations for math practice
// problems. Synthesize pattern-matches the (Korean) topic and question text
// against a fixed, ordered rule table and draws a number line, coordinate
// plane, rectangle, or circle with computed geometry. It is pure: no state,
// no I/O, deterministic output, and an empty string whenever no visual aid
// is warranted.
package diagram

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Logical canvas. All geometry is computed in this space; the viewBox lets
// the host scale the output losslessly.
const (
	viewW = 400
	viewH = 300
	cx    = viewW / 2
	cy    = viewH / 2
)

// Colors and fonts are theme variables so the host page restyles the markup.
const (
	strokeColor = "var(--text-primary)"
	dimColor    = "var(--text-secondary)"
	accentColor = "var(--accent-blue)"
	fontFamily  = "var(--font-sans)"
)

var (
	numberLineQuestion = regexp.MustCompile(`수직선|수선|수 직선`)
	numberLineTopic    = regexp.MustCompile(`수직선|수선`)
	graphPattern       = regexp.MustCompile(`그래프|좌표평면|좌표|함수|평행이동|이차함수`)
	circlePattern      = regexp.MustCompile(`(^|\s)원(\s|$|[.,!의])`)
	quadraticPattern   = regexp.MustCompile(`x\^2|x²|x2|이차함수`)
	rectPattern        = regexp.MustCompile(`사각형|직사각형|정사각형`)
)

// rule pairs a predicate with a renderer. Rules are evaluated in order and
// the first match wins, so new diagram kinds slot in without disturbing the
// precedence of existing ones.
type rule struct {
	match  func(topic, question string) bool
	render func(topic, question string) string
}

var rules = []rule{
	{matchNumberLine, renderNumberLine},
	{matchCoordinate, renderCoordinate},
	{matchRectangle, renderRectangle},
	{matchCircle, renderCircle},
}

// Synthesize returns SVG markup illustrating the question, or "" when the
// question gives nothing to draw (pure arithmetic gets no picture).
func Synthesize(topic, question string) string {
	for _, r := range rules {
		if r.match(topic, question) {
			return r.render(topic, question)
		}
	}
	return ""
}

// ── Predicates ──────────────────────────────────────────

func matchNumberLine(topic, question string) bool {
	if !numberLineQuestion.MatchString(question) && !numberLineTopic.MatchString(topic) {
		return false
	}
	return len(ExtractInts(question)) >= 2
}

func matchCoordinate(topic, question string) bool {
	coords := ExtractPoints(question)

	isGraph := graphPattern.MatchString(topic) || graphPattern.MatchString(question)
	isCircle := circlePattern.MatchString(topic) || circlePattern.MatchString(question)
	isPoint := strings.Contains(question, " 점 ") || len(coords) > 0
	isQuadratic := quadraticPattern.MatchString(question) || strings.Contains(topic, "이차함수")

	if !isGraph && !isPoint && !(isCircle && len(coords) > 0) {
		return false
	}
	return len(coords) > 0 || isQuadratic
}

func matchRectangle(topic, question string) bool {
	return rectPattern.MatchString(topic) || rectPattern.MatchString(question)
}

func matchCircle(topic, question string) bool {
	return circlePattern.MatchString(topic) || circlePattern.MatchString(question)
}

// ── Renderers ───────────────────────────────────────────

func arrowDefs() string {
	return fmt.Sprintf(`<defs>
<marker id="arrow-end" markerWidth="8" markerHeight="8" refX="7" refY="3" orient="auto">
<path d="M0,0 L7,3 L0,6" fill="none" stroke="%s" stroke-width="1.5" />
</marker>
<marker id="arrow-start" markerWidth="8" markerHeight="8" refX="1" refY="3" orient="auto">
<path d="M8,0 L1,3 L8,6" fill="none" stroke="%s" stroke-width="1.5" />
</marker>
</defs>`, strokeColor, strokeColor)
}

// renderNumberLine draws a double-headed axis spanning two units past the
// extracted extremes, integer ticks, highlighted ticks for the extracted
// numbers, and a translucent band between the first two numbers.
func renderNumberLine(topic, question string) string {
	nums := ExtractInts(question)

	minNum := nums[0]
	maxNum := nums[0]
	for _, n := range nums {
		if n < minNum {
			minNum = n
		}
		if n > maxNum {
			maxNum = n
		}
	}
	minNum -= 2
	maxNum += 2

	lineY := float64(cy)
	lineStartX := 40.0
	lineEndX := float64(viewW) - 40.0
	scale := (lineEndX - lineStartX) / float64(maxNum-minNum)

	highlighted := make(map[int]bool, len(nums))
	for _, n := range nums {
		highlighted[n] = true
	}

	var ticks strings.Builder
	for i := minNum; i <= maxNum; i++ {
		px := lineStartX + float64(i-minNum)*scale
		color := dimColor
		width := "1.5"
		fontSize := "12px"
		fontWeight := "400"
		textColor := strokeColor
		if highlighted[i] {
			color = accentColor
			width = "2.5"
			fontSize = "14px"
			fontWeight = "800"
			textColor = accentColor
		}
		fmt.Fprintf(&ticks, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" />`+"\n",
			fnum(px), fnum(lineY-8), fnum(px), fnum(lineY+8), color, width)
		fmt.Fprintf(&ticks, `<text x="%s" y="%s" text-anchor="middle" font-size="%s" font-weight="%s" fill="%s">%d</text>`+"\n",
			fnum(px), fnum(lineY+25), fontSize, fontWeight, textColor, i)
		if highlighted[i] {
			fmt.Fprintf(&ticks, `<circle cx="%s" cy="%s" r="5" fill="%s" />`+"\n", fnum(px), fnum(lineY), accentColor)
		}
	}

	// Shade the interval between the first two extracted numbers.
	px1 := lineStartX + float64(nums[0]-minNum)*scale
	px2 := lineStartX + float64(nums[1]-minNum)*scale
	leftX := math.Min(px1, px2)
	rightX := math.Max(px1, px2)
	fmt.Fprintf(&ticks, `<rect x="%s" y="%s" width="%s" height="8" fill="%s" opacity="0.2" rx="4" />`+"\n",
		fnum(leftX), fnum(lineY-4), fnum(rightX-leftX), accentColor)

	return fmt.Sprintf(`<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" style="font-family: %s;">
%s
<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2" marker-start="url(#arrow-start)" marker-end="url(#arrow-end)"/>
%s</svg>`,
		viewW, viewH, fontFamily,
		arrowDefs(),
		fnum(lineStartX-10), fnum(lineY), fnum(lineEndX+10), fnum(lineY), strokeColor,
		ticks.String())
}

// renderCoordinate draws labeled axes through the canvas center, dashed
// projection lines and a marker per extracted point, an optional sampled
// y = 0.2x² curve, and an optional circle centered at the first point. The
// scale is chosen so the farthest point (or circle extent) stays inside a
// fixed margin, capped at 35 px per unit.
func renderCoordinate(topic, question string) string {
	nums := ExtractInts(question)
	coords := ExtractPoints(question)

	isCircle := circlePattern.MatchString(topic) || circlePattern.MatchString(question)
	isQuadratic := quadraticPattern.MatchString(question) || strings.Contains(topic, "이차함수")

	maxAbs := 5.0
	for _, p := range coords {
		maxAbs = math.Max(maxAbs, math.Abs(float64(p.X)))
		maxAbs = math.Max(maxAbs, math.Abs(float64(p.Y)))
	}
	if isCircle && len(nums) > 2 {
		maxAbs = math.Max(maxAbs, math.Abs(float64(nums[len(nums)-1]))+2)
	}

	gridScale := math.Min(140/maxAbs, 35)
	originX := float64(cx)
	originY := float64(cy)

	var points strings.Builder
	for _, p := range coords {
		px := originX + float64(p.X)*gridScale
		py := originY - float64(p.Y)*gridScale

		// Dashed projections onto both axes, with the coordinate values
		// written on the axes themselves.
		fmt.Fprintf(&points, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="3,3" />`+"\n",
			fnum(px), fnum(py), fnum(px), fnum(originY), dimColor)
		fmt.Fprintf(&points, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="3,3" />`+"\n",
			fnum(px), fnum(py), fnum(originX), fnum(py), dimColor)
		fmt.Fprintf(&points, `<text x="%s" y="%s" text-anchor="middle" font-size="10px" fill="%s">%d</text>`+"\n",
			fnum(px), fnum(originY+15), dimColor, p.X)
		fmt.Fprintf(&points, `<text x="%s" y="%s" text-anchor="end" font-size="10px" fill="%s">%d</text>`+"\n",
			fnum(originX-12), fnum(py+4), dimColor, p.Y)

		// Caption placement flips by quadrant so labels stay clear of the
		// projection lines.
		labelX := 10.0
		anchor := "start"
		if p.X < 0 {
			labelX = -10.0
			anchor = "end"
		}
		labelY := -12.0
		if p.Y < 0 {
			labelY = 18.0
		}

		fmt.Fprintf(&points, `<circle cx="%s" cy="%s" r="5" fill="%s" />`+"\n", fnum(px), fnum(py), accentColor)
		fmt.Fprintf(&points, `<text x="%s" y="%s" text-anchor="%s" font-size="13px" font-weight="800" fill="%s">%s(%d, %d)</text>`+"\n",
			fnum(px+labelX), fnum(py+labelY), anchor, accentColor, p.Label, p.X, p.Y)
	}

	var curve string
	if isQuadratic {
		var path []string
		for x := -maxAbs - 2; x <= maxAbs+2; x += 0.5 {
			y := 0.2 * x * x
			px := originX + x*gridScale
			py := originY - y*gridScale
			if px >= 20 && px <= viewW-20 && py >= 20 && py <= viewH-20 {
				cmd := "L"
				if len(path) == 0 {
					cmd = "M"
				}
				path = append(path, fmt.Sprintf("%s%s,%s", cmd, fnum(px), fnum(py)))
			}
		}
		curve = fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2.5" opacity="0.8" />`+"\n",
			strings.Join(path, " "), accentColor)
	}

	var circleInGraph string
	if isCircle && len(coords) > 0 {
		radius := circleRadius(nums, coords)
		px := originX + float64(coords[0].X)*gridScale
		py := originY - float64(coords[0].Y)*gridScale
		circleInGraph = fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="0.1" stroke="%s" stroke-width="2" />`+"\n",
			fnum(px), fnum(py), fnum(float64(radius)*gridScale), accentColor, accentColor)
	}

	return fmt.Sprintf(`<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" style="font-family: %s;">
%s
<path d="M 0,%d L %d,%d M %d,0 L %d,%d" stroke="%s" stroke-width="0.5" stroke-dasharray="4,4" opacity="0.3" />
<line x1="30" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2" marker-end="url(#arrow-end)"/>
<line x1="%d" y1="%d" x2="%d" y2="30" stroke="%s" stroke-width="2" marker-end="url(#arrow-end)"/>
<text x="%d" y="%d" text-anchor="middle" font-size="14px" font-weight="bold" fill="%s">x</text>
<text x="%d" y="25" text-anchor="middle" font-size="14px" font-weight="bold" fill="%s">y</text>
<text x="%d" y="%d" text-anchor="middle" font-size="11px" fill="%s">O</text>
%s%s%s</svg>`,
		viewW, viewH, fontFamily,
		arrowDefs(),
		cy, viewW, cy, cx, cx, viewH, dimColor,
		cy, viewW-30, cy, strokeColor,
		cx, viewH-30, cx, strokeColor,
		viewW-20, cy+20, strokeColor,
		cx-18, strokeColor,
		cx-10, cy+15, strokeColor,
		curve, circleInGraph, points.String())
}

// circleRadius picks the first positive literal that is not one of the point
// coordinates, falling back to 3.
func circleRadius(nums []int, coords []Point) int {
	for _, n := range nums {
		if n <= 0 {
			continue
		}
		used := false
		for _, p := range coords {
			if p.X == n || p.Y == n {
				used = true
				break
			}
		}
		if !used {
			return n
		}
	}
	return 3
}

func renderRectangle(topic, question string) string {
	nums := ExtractInts(question)
	w, h := 180, 120

	width := "a"
	height := "b"
	if len(nums) > 0 {
		width = fmt.Sprintf("%d", nums[0])
	}
	if len(nums) > 1 {
		height = fmt.Sprintf("%d", nums[1])
	}

	return fmt.Sprintf(`<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="%s" stroke-width="3" rx="4"/>
<text x="%d" y="%d" text-anchor="middle" fill="%s" font-weight="bold">%scm</text>
<text x="%d" y="%d" text-anchor="middle" fill="%s" font-weight="bold">%scm</text>
</svg>`,
		viewW, viewH,
		cx-w/2, cy-h/2, w, h, strokeColor,
		cx, cy-h/2-15, strokeColor, width,
		cx-w/2-30, cy+5, strokeColor, height)
}

func renderCircle(topic, question string) string {
	nums := ExtractInts(question)
	r := 80

	label := "r"
	if len(nums) > 0 {
		label = fmt.Sprintf("%d", nums[0])
	}

	return fmt.Sprintf(`<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
<circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="3"/>
<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2" stroke-dasharray="4,2"/>
<text x="%d" y="%d" text-anchor="middle" fill="%s" font-weight="bold">r = %s</text>
</svg>`,
		viewW, viewH,
		cx, cy, r, strokeColor,
		cx, cy, cx+r, cy, accentColor,
		cx+r/2, cy-10, accentColor, label)
}

// fnum formats a pixel coordinate, trimming trailing zeros so whole numbers
// render without a decimal point.
func fnum(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	if s == "-0" {
		s = "0"
	}
	return s
}
