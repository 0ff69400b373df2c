package diagram

import (
	"reflect"
	"testing"
)

func TestExtractInts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"two numbers", "두 수 -3, 5가 표시된 수직선", []int{-3, 5}},
		{"no numbers", "수직선 위의 두 점", nil},
		{"arithmetic", "3 + 4 = ?", []int{3, 4}},
		{"negative only", "-7과 -2 사이", []int{-7, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractInts(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractInts(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPoints(t *testing.T) {
	got := ExtractPoints("점 A(2, 3)과 점 B(-1, -4)를 좌표평면에 나타내시오")
	want := []Point{
		{Label: "A", X: 2, Y: 3},
		{Label: "B", X: -1, Y: -4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPoints = %v, want %v", got, want)
	}
}

func TestExtractPointsUnlabeled(t *testing.T) {
	got := ExtractPoints("(0, 5)를 지나는 직선")
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Label != "" || got[0].X != 0 || got[0].Y != 5 {
		t.Errorf("got %+v, want unlabeled (0, 5)", got[0])
	}
}

func TestExtractPointsNone(t *testing.T) {
	if got := ExtractPoints("이차함수 y = x^2의 그래프"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
