package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/mathdaily/backend/internal/auth"
	"github.com/mathdaily/backend/internal/curriculum"
	"github.com/mathdaily/backend/internal/database"
	"github.com/mathdaily/backend/internal/generator"
	"github.com/mathdaily/backend/internal/middleware"
	"github.com/mathdaily/backend/internal/session"
	"github.com/mathdaily/backend/internal/study"
	"github.com/mathdaily/backend/internal/worksheet"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	curriculumHandler := curriculum.NewHandler()

	studyStore := study.NewStore(db)
	studyHandler := study.NewHandler(studyStore)

	gen := generator.NewGenerator()
	sessions := session.NewMemoryRepository()
	worksheetHandler := worksheet.NewHandler(gen, sessions, studyStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/curriculum/{schoolLevel}/{grade}", curriculumHandler.GetChapters).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/worksheets", worksheetHandler.Create).Methods("POST")
	protected.HandleFunc("/worksheets/current", worksheetHandler.Current).Methods("GET")
	protected.HandleFunc("/worksheets/select", worksheetHandler.Select).Methods("POST")
	protected.HandleFunc("/worksheets/confirm", worksheetHandler.Confirm).Methods("POST")
	protected.HandleFunc("/worksheets/advance", worksheetHandler.Advance).Methods("POST")
	protected.HandleFunc("/worksheets/back", worksheetHandler.Back).Methods("POST")
	protected.HandleFunc("/worksheets/finish", worksheetHandler.Finish).Methods("POST")
	protected.HandleFunc("/worksheets/retry", worksheetHandler.Retry).Methods("POST")
	protected.HandleFunc("/worksheets/similar", worksheetHandler.Similar).Methods("POST")

	protected.HandleFunc("/dashboard", studyHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/study/complete", studyHandler.Complete).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
