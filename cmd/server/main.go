package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"markjournal/internal/analysis"
	"markjournal/internal/config"
	"markjournal/internal/db"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/kv"
	"markjournal/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	dbConn, err := db.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	defer dbConn.Close()
	logger.Info("database ready", zap.String("driver", dbConn.DriverName()))

	stores := journal.NewStores(kv.NewSQL(dbConn),
		journal.WithLogger(logger),
		journal.WithLocation(cfg.Location()),
	)

	tr, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var analyzer analysis.Analyzer
	if cfg.GeminiAPIKey != "" {
		g, err := analysis.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("failed to create analyzer", zap.Error(err))
		}
		analyzer = g
	} else {
		logger.Warn("GEMINI_API_KEY not set; tone analysis disabled")
	}

	migrateAll(ctx, dbConn, stores, logger)

	r := newRouter(cfg, dbConn, stores, tr, analyzer, logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}

// migrateAll upgrades the local collection and every account's collection
// written in the legacy format. Failures are logged and do not stop startup.
func migrateAll(ctx context.Context, conn *sqlx.DB, stores *journal.Stores, logger *zap.Logger) {
	scopes := []string{journal.LocalScope}
	var ids []int
	if err := conn.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		logger.Error("could not list users for migration", zap.Error(err))
	}
	for _, id := range ids {
		scopes = append(scopes, journal.UserScope(id))
	}

	for _, scope := range scopes {
		n, err := stores.For(scope).Migrate(ctx)
		if err != nil {
			logger.Error("legacy migration failed", zap.String("scope", scope), zap.Error(err))
			continue
		}
		if n > 0 {
			logger.Info("legacy notes migrated", zap.String("scope", scope), zap.Int("count", n))
		}
	}
}
