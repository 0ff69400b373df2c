package curriculum

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mathdaily/backend/internal/models"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetChapters handles GET /curriculum/{schoolLevel}/{grade}.
func (h *Handler) GetChapters(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	level := models.SchoolLevel(vars["schoolLevel"])
	if !models.ValidSchoolLevels[level] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid school level"})
		return
	}

	grade, err := strconv.Atoi(vars["grade"])
	if err != nil || grade < 1 || grade > 6 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid grade"})
		return
	}

	chapters := Chapters(level, grade)
	log.Printf("Curriculum query: %s grade %d -> %d chapters", level, grade, len(chapters))

	writeJSON(w, http.StatusOK, chapters)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
