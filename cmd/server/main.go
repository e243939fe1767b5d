package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/opositores/backend/internal/analytics"
	"github.com/opositores/backend/internal/auth"
	"github.com/opositores/backend/internal/config"
	"github.com/opositores/backend/internal/database"
	"github.com/opositores/backend/internal/exams"
	"github.com/opositores/backend/internal/middleware"
	"github.com/opositores/backend/internal/models"
	"github.com/opositores/backend/internal/practicalsets"
	"github.com/opositores/backend/internal/questions"
	"github.com/opositores/backend/internal/themes"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	themeStore := themes.NewStore(db)
	if err := themeStore.SeedDefaultThemes(context.Background()); err != nil {
		log.Fatalf("Failed to seed themes: %v", err)
	}

	questionStore := questions.NewStore(db)
	analyticsService := analytics.NewService(analytics.NewStore(db))
	examService := exams.NewService(exams.NewStore(db), questionStore, themeStore, analyticsService)

	secret := []byte(cfg.JWTSecret)
	authHandler := auth.NewHandler(db, secret)
	themeHandler := themes.NewHandler(themeStore)
	questionHandler := questions.NewHandler(questionStore)
	examHandler := exams.NewHandler(examService)
	analyticsHandler := analytics.NewHandler(analyticsService)
	setHandler := practicalsets.NewHandler(practicalsets.NewStore(db))

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(secret))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/themes", themeHandler.ListThemes).Methods("GET")
	protected.HandleFunc("/themes/{id:[0-9]+}", themeHandler.GetTheme).Methods("GET")

	protected.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	protected.HandleFunc("/questions/{id:[0-9]+}", questionHandler.GetQuestion).Methods("GET")

	protected.HandleFunc("/exams/generate", examHandler.GenerateExam).Methods("POST")
	protected.HandleFunc("/exams/{id:[0-9]+}", examHandler.GetExam).Methods("GET")
	protected.HandleFunc("/exams/start", examHandler.StartAttempt).Methods("POST")
	protected.HandleFunc("/exams/attempts/{id:[0-9]+}/answer", examHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/exams/attempts/{id:[0-9]+}/finish", examHandler.FinishAttempt).Methods("POST")
	protected.HandleFunc("/exams/attempts/{id:[0-9]+}/results", examHandler.GetResults).Methods("GET")
	protected.HandleFunc("/exams/history", examHandler.History).Methods("GET")

	protected.HandleFunc("/analytics/failures", analyticsHandler.GetFailureAnalytics).Methods("GET")
	protected.HandleFunc("/analytics/study-plan", analyticsHandler.GenerateStudyPlan).Methods("GET")
	protected.HandleFunc("/analytics/overall-stats", analyticsHandler.GetOverallStats).Methods("GET")

	protected.HandleFunc("/practical-sets", setHandler.ListSets).Methods("GET")
	protected.HandleFunc("/practical-sets/by-theme/{id:[0-9]+}", setHandler.ListSetsByTheme).Methods("GET")
	protected.HandleFunc("/practical-sets/random", setHandler.GetRandomSet).Methods("GET")
	protected.HandleFunc("/practical-sets/{id:[0-9]+}", setHandler.GetSet).Methods("GET")

	// Content curation routes
	curation := protected.PathPrefix("").Subrouter()
	curation.Use(middleware.RequireRole(models.RoleAdmin, models.RoleCurator))
	curation.HandleFunc("/themes", themeHandler.CreateTheme).Methods("POST")
	curation.HandleFunc("/questions", questionHandler.CreateQuestion).Methods("POST")
	curation.HandleFunc("/questions/bulk", questionHandler.BulkUpload).Methods("POST")
	curation.HandleFunc("/questions/{id:[0-9]+}", questionHandler.UpdateQuestion).Methods("PUT")
	curation.HandleFunc("/questions/{id:[0-9]+}", questionHandler.DeleteQuestion).Methods("DELETE")
	curation.HandleFunc("/practical-sets", setHandler.CreateSet).Methods("POST")
	curation.HandleFunc("/practical-sets/{id:[0-9]+}", setHandler.DeleteSet).Methods("DELETE")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
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

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
