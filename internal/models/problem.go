package models

type SchoolLevel string

const (
	SchoolElementary SchoolLevel = "elementary"
	SchoolMiddle     SchoolLevel = "middle"
	SchoolHigh       SchoolLevel = "high"
)

var ValidSchoolLevels = map[SchoolLevel]bool{
	SchoolElementary: true,
	SchoolMiddle:     true,
	SchoolHigh:       true,
}

// GradeCounts is the number of grades per school level.
var GradeCounts = map[SchoolLevel]int{
	SchoolElementary: 6,
	SchoolMiddle:     3,
	SchoolHigh:       3,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// Problem is one practice item. Immutable once created; a retry or
// similar-generation transition replaces the whole batch with freshly
// minted IDs rather than mutating existing problems.
type Problem struct {
	ID          string     `json:"id"`
	OrderNum    int        `json:"orderNum"`
	Question    string     `json:"question"`
	Answer      string     `json:"answer"`
	Options     []string   `json:"options"`
	Type        string     `json:"type"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Explanation string     `json:"explanation,omitempty"`
	SVG         string     `json:"svg,omitempty"`
}

// ProblemPayload is the wire shape produced by the LLM (or the bank).
// Only question, answer and topic are required; everything else is
// defaulted at the parse boundary. Difficulty arrives as 1..3.
type ProblemPayload struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Topic       string   `json:"topic"`
	Type        string   `json:"type"`
	Difficulty  int      `json:"difficulty"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation"`
	SVG         string   `json:"svg"`
}

type GenerateRequest struct {
	Count       int         `json:"count"`
	SchoolLevel SchoolLevel `json:"school_level"`
	Grade       int         `json:"grade"`
	Difficulty  Difficulty  `json:"difficulty"`
	Topics      []string    `json:"topics,omitempty"`
	Unit        string      `json:"unit,omitempty"`
}
