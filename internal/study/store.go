// Package study persists completed worksheet sittings and serves the
// progress dashboard built from them.
package study

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/mathdaily/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveRecord inserts one completed sitting. It implements the worksheet
// layer's completion sink.
func (s *Store) SaveRecord(ctx context.Context, rec models.StudyRecord) error {
	topics := rec.IncorrectTopics
	if topics == nil {
		topics = []string{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO study_sessions (user_id, date, score, total_count, level, incorrect_topics)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UserID, rec.Date, rec.Score, rec.TotalCount, rec.Level, pq.Array(topics),
	)
	if err != nil {
		return fmt.Errorf("insert study session: %w", err)
	}
	return nil
}

// RecentSessions returns the user's sessions from the last `days` days,
// newest first.
func (s *Store) RecentSessions(ctx context.Context, userID string, days int) ([]models.StudySession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), score, total_count, level, incorrect_topics, created_at
		 FROM study_sessions
		 WHERE user_id = $1 AND date >= NOW() - $2 * INTERVAL '1 day'
		 ORDER BY date DESC, created_at DESC`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("query study sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		var session models.StudySession
		var topics pq.StringArray
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.Date, &session.Score,
			&session.TotalCount, &session.Level, &topics, &session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		session.IncorrectTopics = topics
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study sessions: %w", err)
	}

	return sessions, nil
}
