// Package curriculum serves the static Korean math curriculum table. The
// data ships with the binary; there is no database behind it.
package curriculum

import "github.com/mathdaily/backend/internal/models"

type entry struct {
	grade int
	topic string
	units []string
}

var curriculumData = map[models.SchoolLevel][]entry{
	models.SchoolElementary: {
		{1, "9까지의 수", []string{"1~9 이해와 쓰기", "수의 순서와 크기 비교"}},
		{1, "덧셈과 뺄셈(1)", []string{"모으기와 가르기", "덧셈식과 뺄셈식"}},
		{2, "세 자리 수", []string{"백, 몇백", "세 자리 수의 자릿값"}},
		{2, "곱셈구구", []string{"2~5단", "6~9단"}},
		{3, "덧셈과 뺄셈(심화)", []string{"세 자리 수의 덧셈", "세 자리 수의 뺄셈"}},
		{3, "평면도형", []string{"선분, 반직선, 직선", "직각삼각형과 직사각형"}},
		{4, "큰 수", []string{"만, 억, 조", "수의 크기 비교"}},
		{4, "각도", []string{"각의 크기", "삼각형의 내각의 합"}},
		{5, "약수와 배수", []string{"약수와 배수 찾기", "최대공약수와 최소공배수"}},
		{5, "다각형의 둘레와 넓이", []string{"사각형의 넓이", "삼각형의 넓이"}},
		{6, "분수의 나눗셈", []string{"(분수) ÷ (자연수)", "(분수) ÷ (분수)"}},
		{6, "비례식과 비례배분", []string{"비의 성질", "비례배분 활용"}},
	},
	models.SchoolMiddle: {
		{1, "수와 연산", []string{"소인수분해", "정수와 유리수"}},
		{1, "문자와 식", []string{"문자의 사용", "일차방정식"}},
		{2, "식의 계산", []string{"단항식의 계산", "다항식의 계산"}},
		{2, "부등식", []string{"일차부등식", "연립일차방정식"}},
		{3, "실수와 그 연산", []string{"제곱근과 실수", "근호 포함 식 계산"}},
		{3, "이차방정식", []string{"인수분해", "이차방정식의 해"}},
	},
	models.SchoolHigh: {
		{1, "다항식", []string{"다항식의 연산", "항등식과 나머지정리"}},
		{1, "방정식과 부등식", []string{"복소수", "이차방정식", "이차함수", "여러 가지 방정식"}},
		{1, "도형의 방정식", []string{"평면좌표", "직선의 방정식", "원의 방정식", "도형의 이동"}},
		{2, "수학 I", []string{"지수함수와 로그함수", "삼각함수", "수열"}},
		{2, "수학 II", []string{"함수의 극한과 연속", "다항함수의 미분법", "다항함수의 적분법"}},
		{3, "미적분", []string{"수열의 극한", "여러 가지 미분법", "여러 가지 적분법"}},
		{3, "확률과 통계", []string{"경우의 수", "확률", "통계"}},
	},
}

// Chapters returns the chapters for one school level and grade. Chapter and
// unit IDs are positional: chapter id = index+1, unit id = chapter*100+index.
// An unknown level or a grade with no entries yields an empty slice.
func Chapters(level models.SchoolLevel, grade int) []models.Chapter {
	chapters := []models.Chapter{}
	for _, e := range curriculumData[level] {
		if e.grade != grade {
			continue
		}
		id := len(chapters) + 1
		units := make([]models.Unit, 0, len(e.units))
		for uIdx, name := range e.units {
			units = append(units, models.Unit{ID: id*100 + uIdx, Name: name})
		}
		chapters = append(chapters, models.Chapter{ID: id, Name: e.topic, Units: units})
	}
	return chapters
}
