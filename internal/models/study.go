package models

import "time"

// StudySession is one completed worksheet sitting as stored in
// study_sessions. Date is "YYYY-MM-DD".
type StudySession struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	Date            string     `json:"date"`
	Score           int        `json:"score"`
	TotalCount      int        `json:"total_count"`
	Level           Difficulty `json:"level"`
	IncorrectTopics []string   `json:"incorrect_topics,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StudyRecord is the session-complete sink payload: what the worksheet
// layer hands the study store once a summary has been computed.
type StudyRecord struct {
	UserID          string     `json:"user_id"`
	Date            string     `json:"date"`
	Score           int        `json:"score"`
	TotalCount      int        `json:"total_count"`
	Level           Difficulty `json:"level"`
	IncorrectTopics []string   `json:"incorrect_topics,omitempty"`
}

type DashboardStats struct {
	TotalDays    int        `json:"totalDays"`
	AvgScore     int        `json:"avgScore"`
	CurrentLevel Difficulty `json:"currentLevel"`
	Streak       int        `json:"streak"`
	WeakPoints   []string   `json:"weakPoints"`
}

type DashboardResponse struct {
	Sessions []StudySession `json:"sessions"`
	Stats    DashboardStats `json:"stats"`
}
