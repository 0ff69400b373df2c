package study

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mathdaily/backend/internal/models"
)

// sessionStore is the slice of Store the handler needs; tests substitute
// a fake.
type sessionStore interface {
	SaveRecord(ctx context.Context, rec models.StudyRecord) error
	RecentSessions(ctx context.Context, userID string, days int) ([]models.StudySession, error)
}

// dashboardWindowDays is the history window shown on the calendar.
const dashboardWindowDays = 30

type Handler struct {
	store sessionStore
}

func NewHandler(store sessionStore) *Handler {
	return &Handler{store: store}
}

func getUserID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value("user_id").(string)
	return uid, ok
}

// GetDashboard handles GET /dashboard: the 30-day session history plus
// derived stats (average, suggested level, streak, weak points).
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessions, err := h.store.RecentSessions(r.Context(), userID, dashboardWindowDays)
	if err != nil {
		log.Printf("Dashboard query failed for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	writeJSON(w, http.StatusOK, models.DashboardResponse{
		Sessions: sessions,
		Stats: models.DashboardStats{
			TotalDays:    len(sessions),
			AvgScore:     AverageScore(sessions),
			CurrentLevel: SuggestLevel(sessions),
			Streak:       Streak(sessions, time.Now()),
			WeakPoints:   WeakPoints(sessions),
		},
	})
}

type completeRequest struct {
	Date            string            `json:"date"`
	Score           *int              `json:"score"`
	TotalCount      int               `json:"totalCount"`
	Level           models.Difficulty `json:"level"`
	IncorrectTopics []string          `json:"incorrectTopics"`
}

// Complete handles POST /study/complete for clients that grade locally
// and report only the result. The worksheet flow records through the sink
// instead, so this is the manual path.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Date == "" || req.Score == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing required fields"})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	if *req.Score < 0 || *req.Score > 100 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "score must be between 0 and 100"})
		return
	}
	if req.Level == "" {
		req.Level = models.DifficultyMedium
	}
	if !models.ValidDifficulties[req.Level] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid level"})
		return
	}

	record := models.StudyRecord{
		UserID:          userID,
		Date:            req.Date,
		Score:           *req.Score,
		TotalCount:      req.TotalCount,
		Level:           req.Level,
		IncorrectTopics: req.IncorrectTopics,
	}
	if err := h.store.SaveRecord(r.Context(), record); err != nil {
		log.Printf("Session save failed for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
