// Package worksheet exposes the session state machine over HTTP: one
// active worksheet per user, created from a generation request and driven
// through select/confirm/advance/finish transitions.
package worksheet

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/mathdaily/backend/internal/generator"
	"github.com/mathdaily/backend/internal/models"
	"github.com/mathdaily/backend/internal/session"
)

// ProblemSource produces a problem batch for one request.
type ProblemSource interface {
	GenerateProblems(ctx context.Context, req models.GenerateRequest) ([]models.Problem, error)
}

// RecordSink receives the completion record once a summary is computed.
type RecordSink interface {
	SaveRecord(ctx context.Context, rec models.StudyRecord) error
}

type Handler struct {
	source ProblemSource
	repo   session.Repository
	sink   RecordSink

	// settings remembers each user's last generation request so retries
	// and similar-problem batches reuse the same level and grade.
	mu       sync.Mutex
	settings map[string]models.GenerateRequest
}

func NewHandler(source ProblemSource, repo session.Repository, sink RecordSink) *Handler {
	return &Handler{
		source:   source,
		repo:     repo,
		sink:     sink,
		settings: make(map[string]models.GenerateRequest),
	}
}

func getUserID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value("user_id").(string)
	return uid, ok
}

// view is the per-request snapshot handed to the client.
type view struct {
	State        string               `json:"state"`
	CurrentIndex int                  `json:"currentIndex"`
	TotalCount   int                  `json:"totalCount"`
	Problem      *models.Problem      `json:"problem,omitempty"`
	Options      []string             `json:"options,omitempty"`
	Answer       *session.AnswerState `json:"answer,omitempty"`
}

func buildView(s *session.Session) view {
	v := view{
		State:        s.State().String(),
		CurrentIndex: s.CurrentIndex(),
		TotalCount:   len(s.Problems()),
	}

	if p, ok := s.Current(); ok {
		v.Problem = &p
		v.Options = s.OptionsFor(p.ID)
		if state, ok := s.Answer(p.ID); ok && state.Submitted {
			v.Answer = &state
		}
	}
	return v
}

// Create handles POST /worksheets. A failed generation leaves any
// existing worksheet untouched.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if req.Count <= 0 {
		req.Count = 10
	}
	if req.SchoolLevel == "" {
		req.SchoolLevel = models.SchoolElementary
	}
	if !models.ValidSchoolLevels[req.SchoolLevel] {
		writeError(w, http.StatusBadRequest, "Invalid school level", "")
		return
	}
	if req.Grade <= 0 {
		req.Grade = 3
	}
	if req.Grade > models.GradeCounts[req.SchoolLevel] {
		writeError(w, http.StatusBadRequest, "Invalid grade", "")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMedium
	}
	if !models.ValidDifficulties[req.Difficulty] {
		writeError(w, http.StatusBadRequest, "Invalid difficulty", "")
		return
	}

	log.Printf("Worksheet request: user=%s count=%d %s grade %d difficulty=%s topics=%v",
		userID, req.Count, req.SchoolLevel, req.Grade, req.Difficulty, req.Topics)

	problems, err := h.source.GenerateProblems(r.Context(), req)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}
	if len(problems) == 0 {
		writeError(w, http.StatusInternalServerError, "Empty response from generator", "SERVER_ERROR")
		return
	}

	s := session.New(problems)
	h.repo.Save(userID, s)

	h.mu.Lock()
	h.settings[userID] = req
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, buildView(s))
}

func (h *Handler) writeGenerationError(w http.ResponseWriter, err error) {
	log.Printf("Generation failed: %v", err)

	var vErr *generator.ValidationError
	switch {
	case errors.Is(err, generator.ErrAuth):
		writeError(w, http.StatusUnauthorized, "Invalid API key", "AUTH_ERROR")
	case errors.Is(err, generator.ErrQuota):
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", "QUOTA_EXCEEDED")
	case errors.As(err, &vErr):
		writeError(w, http.StatusInternalServerError, "Failed to parse AI response", "PARSE_ERROR")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", "SERVER_ERROR")
	}
}

// Current handles GET /worksheets/current.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildView(s))
}

type selectRequest struct {
	ProblemID string `json:"problem_id"`
	Option    string `json:"option"`
}

// Select handles POST /worksheets/select.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProblemID == "" {
		writeError(w, http.StatusBadRequest, "problem_id and option are required", "")
		return
	}

	s.SelectOption(req.ProblemID, req.Option)
	writeJSON(w, http.StatusOK, buildView(s))
}

// Confirm handles POST /worksheets/confirm. Confirming without a staged
// selection changes nothing and reports graded=false.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	graded, err := s.ConfirmAnswer(r.Context())
	if err != nil {
		log.Printf("Answer submission failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to grade answer, please retry", "")
		return
	}

	v := buildView(s)
	writeJSON(w, http.StatusOK, struct {
		Graded bool `json:"graded"`
		view
	}{Graded: graded, view: v})
}

// Advance handles POST /worksheets/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if !s.Advance() {
		writeError(w, http.StatusConflict, "Cannot advance: current problem not submitted or worksheet at its end", "")
		return
	}
	writeJSON(w, http.StatusOK, buildView(s))
}

// Back handles POST /worksheets/back.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	s.GoBack()
	writeJSON(w, http.StatusOK, buildView(s))
}

// Finish handles POST /worksheets/finish: computes the summary and hands
// the completion record to the study store. A sink failure is logged but
// does not void the summary.
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, _ := getUserID(r)
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	alreadyCompleted := s.State() == session.Completed

	summary, err := s.Finish()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error(), "")
		return
	}

	// A repeated finish returns the same summary without writing a
	// second study record.
	if alreadyCompleted {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	h.mu.Lock()
	settings := h.settings[userID]
	h.mu.Unlock()

	level := settings.Difficulty
	if level == "" {
		level = models.DifficultyMedium
	}

	record := models.StudyRecord{
		UserID:          userID,
		Date:            time.Now().Format("2006-01-02"),
		Score:           summary.ScorePercent,
		TotalCount:      summary.TotalCount,
		Level:           level,
		IncorrectTopics: summary.IncorrectTopics,
	}
	if err := h.sink.SaveRecord(r.Context(), record); err != nil {
		log.Printf("Failed to save study record for user %s: %v", userID, err)
	}

	writeJSON(w, http.StatusOK, summary)
}

// Retry handles POST /worksheets/retry: re-issues the incorrect problems
// as a fresh batch.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if err := s.RetryIncorrect(); err != nil {
		writeError(w, http.StatusConflict, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, buildView(s))
}

// Similar handles POST /worksheets/similar: generates a fresh batch
// focused on the topics the user missed, replacing the current worksheet.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	userID, _ := getUserID(r)
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	summary, err := s.Finish()
	if err != nil {
		writeError(w, http.StatusConflict, "Worksheet must be completed first", "")
		return
	}
	if len(summary.IncorrectTopics) == 0 {
		writeError(w, http.StatusConflict, "No incorrect topics to practice", "")
		return
	}

	h.mu.Lock()
	req := h.settings[userID]
	h.mu.Unlock()
	if req.SchoolLevel == "" {
		req.SchoolLevel = models.SchoolElementary
		req.Grade = 3
		req.Difficulty = models.DifficultyMedium
	}
	req.Count = 5
	req.Topics = summary.IncorrectTopics

	problems, err := h.source.GenerateProblems(r.Context(), req)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}
	if len(problems) == 0 {
		writeError(w, http.StatusInternalServerError, "Empty response from generator", "SERVER_ERROR")
		return
	}

	fresh := session.New(problems)
	h.repo.Save(userID, fresh)
	writeJSON(w, http.StatusCreated, buildView(fresh))
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return nil, false
	}

	s, ok := h.repo.Load(userID)
	if !ok {
		writeError(w, http.StatusNotFound, "No active worksheet", "")
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg, Code: code})
}
