package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mathdaily/backend/internal/models"
)

// JWTSecret is the HMAC signing key for session tokens. The token only
// attributes requests to a user; name-only login is not a security boundary.
var JWTSecret = []byte("mathdaily-staging-signing-key-2026")

type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Login looks a user up by name and creates one when absent. There is no
// password; the name is the whole identity.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Name is required"})
		return
	}

	var user models.User
	err := h.db.QueryRow(
		`SELECT id, name, created_at FROM users WHERE name = $1 LIMIT 1`,
		req.Name,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		err = h.db.QueryRow(
			`INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)
			 RETURNING id, name, created_at`,
			uuid.NewString(), req.Name, time.Now(),
		).Scan(&user.ID, &user.Name, &user.CreatedAt)

		// Concurrent first login with the same name: the unique constraint
		// fires, so fall back to reading the row the other request created.
		if err != nil && strings.Contains(err.Error(), "duplicate key") {
			err = h.db.QueryRow(
				`SELECT id, name, created_at FROM users WHERE name = $1 LIMIT 1`,
				req.Name,
			).Scan(&user.ID, &user.Name, &user.CreatedAt)
		}
	}

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to log in"})
		return
	}

	token, err := generateToken(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var user models.User
	err := h.db.QueryRow(
		`SELECT id, name, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
