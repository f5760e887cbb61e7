package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"markjournal/internal/analysis"
	"markjournal/internal/config"
	"markjournal/internal/handlers"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	mw "markjournal/internal/middleware"
)

// newRouter mounts the API under /api. analyzer may be nil.
func newRouter(cfg config.Config, dbConn *sqlx.DB, stores *journal.Stores, tr *i18n.Translator, analyzer analysis.Analyzer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Language"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Language(tr))

	authHandler := handlers.NewAuthHandler(dbConn, []byte(cfg.JWTSecret), stores, tr, logger)
	userHandler := handlers.NewUserHandler(dbConn, tr)
	journalHandler := handlers.NewJournalHandler(stores, tr)
	backupHandler := handlers.NewBackupHandler(stores, tr, cfg.ImportDateFormat, logger)
	statsHandler := handlers.NewStatsHandler(stores, tr)
	analyzeHandler := handlers.NewAnalyzeHandler(stores, analyzer, tr, logger)
	migrateHandler := handlers.NewMigrateHandler(stores, tr, logger)
	authMW := mw.NewAuthMiddleware([]byte(cfg.JWTSecret))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := dbConn.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Use(mw.UserLanguage(userHandler.PreferredLanguage, tr))
			pr.Get("/me", userHandler.GetMe)
			pr.Patch("/me", userHandler.UpdateMe)

			pr.Get("/journal", journalHandler.List)
			pr.Delete("/journal", journalHandler.DeleteMany)
			pr.Get("/journal/dates", journalHandler.Dates)
			pr.Post("/journal/import", backupHandler.Import)
			pr.Get("/journal/{date}", journalHandler.Get)
			pr.Patch("/journal/{date}", journalHandler.Save)
			pr.Put("/journal/{date}", journalHandler.Save)
			pr.Delete("/journal/{date}", journalHandler.Delete)
			pr.Get("/journal/{date}/export", backupHandler.Export)

			pr.Get("/stats", statsHandler.Get)
			pr.Post("/analyze", analyzeHandler.Analyze)
			pr.Post("/migrate", migrateHandler.MigrateData)
		})
	})
	return r
}
