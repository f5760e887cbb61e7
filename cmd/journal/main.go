package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"markjournal/internal/config"
	"markjournal/internal/db"
	"markjournal/internal/i18n"
	"markjournal/internal/journal"
	"markjournal/internal/kv"
	"markjournal/internal/logging"
	"markjournal/internal/models"
)

var timeNow = time.Now

var (
	userID  int
	verbose bool
	lang    string
)

// app holds what every command needs. It is built lazily so --help works
// without a database.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	conn   *sqlx.DB
	store  *journal.Store
	tr     *i18n.Translator
	// legacy notes converted while opening
	migrated int
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "journal",
		Short:         "Daily markdown journal with mood and checklist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().IntVar(&userID, "user", 0, "account id whose journal to use (0 uses the local journal)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log storage activity")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "output language (defaults to JOURNAL_LANGUAGE)")

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(writeCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(purgeCmd())
	rootCmd.AddCommand(datesCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp loads config and opens the selected journal. Notes still in the
// legacy format are converted first; a failed conversion is logged and the
// journal opens anyway.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New(true); err != nil {
			return nil, err
		}
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	tr, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if lang == "" || !tr.Supports(lang) {
		lang = tr.Default()
	}

	scope := journal.LocalScope
	if userID > 0 {
		scope = journal.UserScope(userID)
	}
	store := journal.New(kv.Scope(kv.NewSQL(conn), scope),
		journal.WithLogger(logger.With(zap.String("scope", scope))),
		journal.WithLocation(cfg.Location()),
	)
	a := &app{cfg: cfg, logger: logger, conn: conn, store: store, tr: tr}
	if a.migrated, err = store.Migrate(ctx); err != nil {
		logger.Error("legacy migration failed", zap.String("scope", scope), zap.Error(err))
	}
	return a, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.conn.Close()
}

func (a *app) t(key string, repl map[string]string) string {
	return a.tr.T(lang, key, repl)
}

// day resolves a command-line date argument; no argument or "today" means
// the current day.
func (a *app) day(args []string) (time.Time, error) {
	if len(args) == 0 || args[0] == "today" {
		return models.StartOfDay(timeNow().In(a.store.Location())), nil
	}
	d, err := models.ParseDateKey(args[0], a.store.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s", a.t("errors.invalidDate", nil))
	}
	return d, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
