package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"markjournal/internal/analysis"
	"markjournal/internal/backup"
	"markjournal/internal/journal"
	"markjournal/internal/models"
	"markjournal/internal/stats"
)

func showCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [yyyy-MM-dd]",
		Short: "Show the entry for a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.day(args)
			if err != nil {
				return err
			}
			e := a.store.Entry(commandContext(cmd), d)

			fmt.Println(titleStyle.Render(models.DateKey(d)))
			if e.Mood != "" {
				fmt.Printf("%s: %s\n", a.t("mood", nil), e.Mood)
			}
			fmt.Println(renderChecklist(a, e))

			switch {
			case strings.TrimSpace(e.Content) == "":
				fmt.Println(mutedStyle.Render(a.t("previewPlaceholder", nil)))
			case raw:
				fmt.Println(e.Content)
			default:
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
				if err != nil {
					return err
				}
				out, err := r.Render(e.Content)
				if err != nil {
					return err
				}
				fmt.Print(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}

func writeCmd() *cobra.Command {
	var (
		content   string
		file      string
		mood      string
		checklist []string
		clearMood bool
	)

	cmd := &cobra.Command{
		Use:   "write [yyyy-MM-dd]",
		Short: "Set content, mood or checklist for a day",
		Long: "Only the fields given on the command line are changed. Content is read from\n" +
			"--content, --file, or standard input when --file is \"-\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.day(args)
			if err != nil {
				return err
			}

			var patch models.EntryPatch
			switch {
			case file == "-":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				s := string(b)
				patch.Content = &s
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				s := string(b)
				patch.Content = &s
			case cmd.Flags().Changed("content"):
				patch.Content = &content
			}

			if clearMood {
				m := models.Mood("")
				patch.Mood = &m
			} else if mood != "" {
				m, ok := models.ParseMood(mood)
				if !ok {
					return fmt.Errorf("unknown mood %q", mood)
				}
				patch.Mood = &m
			}

			if cmd.Flags().Changed("check") {
				items := make([]models.Activity, 0, len(checklist))
				for _, c := range checklist {
					items = append(items, models.Activity(c))
				}
				patch.Checklist = &items
			}

			if patch.Content == nil && patch.Mood == nil && patch.Checklist == nil {
				return errors.New("nothing to write; pass --content, --file, --mood or --check")
			}

			a.store.Save(commandContext(cmd), d, patch)
			fmt.Println(a.t("toasts.noteSaved", nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "markdown content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from a file (\"-\" for stdin)")
	cmd.Flags().StringVarP(&mood, "mood", "m", "", "mood symbol or name (very-negative … very-positive)")
	cmd.Flags().BoolVar(&clearMood, "clear-mood", false, "remove the mood")
	cmd.Flags().StringSliceVar(&checklist, "check", nil, "completed activities (nutrition,sleep,exercise,study,reading)")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete yyyy-MM-dd",
		Short: "Delete the entry for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.day(args)
			if err != nil {
				return err
			}
			a.store.Delete(commandContext(cmd), d)
			fmt.Println(a.t("toasts.noteDeleted", nil))
			return nil
		},
	}
}

func purgeCmd() *cobra.Command {
	var (
		preset string
		from   string
		to     string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete many entries at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			if !yes {
				label := a.t("deleteDialog.labelAll", nil)
				switch {
				case preset == "":
					label = from + " .. " + to
				case preset != journal.PresetAll:
					label = strings.ToLower(a.t("settings."+preset, nil))
				}
				fmt.Println(a.t("deleteDialog.title", nil))
				fmt.Println(a.t("deleteDialog.message", map[string]string{"label": label}))
				return errors.New("re-run with --yes to confirm")
			}

			ctx := commandContext(cmd)
			var n int
			if preset != "" {
				if n, err = a.store.DeletePreset(ctx, preset, timeNow()); err != nil {
					return fmt.Errorf("%w (use one of %s)", err, strings.Join(journal.Presets(), ", "))
				}
			} else {
				start, err := a.day([]string{from})
				if err != nil {
					return err
				}
				end, err := a.day([]string{to})
				if err != nil {
					return err
				}
				n = a.store.DeleteRange(ctx, start, end)
			}
			fmt.Printf("%s (%d)\n", a.t("toasts.notesDeletedDesc", nil), n)
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "range", "", "named range: "+strings.Join(journal.Presets(), ", "))
	cmd.Flags().StringVar(&from, "from", "", "first day to delete (yyyy-MM-dd)")
	cmd.Flags().StringVar(&to, "to", "", "last day to delete (yyyy-MM-dd)")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	cmd.MarkFlagsMutuallyExclusive("range", "from")
	cmd.MarkFlagsMutuallyExclusive("range", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsOneRequired("range", "from")
	return cmd
}

func datesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List the days that have an entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			for _, d := range a.store.Dates(commandContext(cmd)) {
				fmt.Println(models.DateKey(d))
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export [yyyy-MM-dd]",
		Short: "Write a day's content to <dd-MM-yyyy>.md",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.day(args)
			if err != nil {
				return err
			}
			name, content := backup.Export(d, a.store.Entry(commandContext(cmd), d))
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
			fmt.Println(a.t("toasts.noteExportedDesc", map[string]string{"date": models.DateKey(d)}), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}

func importCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import file.md...",
		Short: "Import notes named after their day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			if format == "" {
				format = a.cfg.ImportDateFormat
			}
			var failed int
			for _, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				d, err := backup.Import(commandContext(cmd), a.store, filepath.Base(path), string(b), format)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %s\n", path, a.t("toasts.importFailedDesc", nil))
					continue
				}
				fmt.Println(a.t("toasts.importSuccessDesc", map[string]string{"date": models.DateKey(d)}))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files not imported", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "date format of the file names (default dd-MM-yyyy)")
	return cmd
}

func statsCmd() *cobra.Command {
	var rangeName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise mood and checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			rng, err := stats.ParseRange(rangeName)
			if err != nil {
				return err
			}
			loc := a.store.Location()
			from, to := rng.Bounds(timeNow().In(loc))
			sum := stats.Compute(a.store.All(commandContext(cmd)), from, to, loc)
			fmt.Print(renderStats(a, rng, sum))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeName, "range", "r", string(stats.Last30), "last7, last30, last90, last365 or all")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [yyyy-MM-dd]",
		Short: "Ask Gemini for the tone of a day's entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.day(args)
			if err != nil {
				return err
			}
			content := a.store.Entry(commandContext(cmd), d).Content
			if strings.TrimSpace(content) == "" {
				return errors.New(a.t("analysis.cannotAnalyzeDesc", nil))
			}
			if a.cfg.GeminiAPIKey == "" {
				return errors.New(a.t("analysis.unavailable", nil))
			}

			g, err := analysis.NewGemini(commandContext(cmd), a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
			if err != nil {
				return err
			}
			res, err := g.Analyze(commandContext(cmd), content)
			if err != nil {
				return fmt.Errorf("%s: %w", a.t("analysis.error", nil), err)
			}
			fmt.Println(titleStyle.Render(a.t("analysis.title", nil)))
			fmt.Printf("%s: %s\n", labelStyle.Render(a.t("analysis.sentiment", nil)), res.OverallSentiment)
			fmt.Printf("%s: %s\n", labelStyle.Render(a.t("analysis.signals", nil)), res.KeyEmotionalSignals)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert notes kept in the legacy format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(commandContext(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.Migrate(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Println(a.t("toasts.migrated", map[string]string{"count": strconv.Itoa(a.migrated + n)}))
			return nil
		},
	}
}
