package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"markjournal/internal/models"
	"markjournal/internal/stats"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderChecklist(a *app, e models.Entry) string {
	parts := make([]string, 0, len(models.Catalog()))
	for _, act := range models.Catalog() {
		label := a.t("checklist."+string(act), nil)
		if e.Has(act) {
			parts = append(parts, doneStyle.Render("[x] "+label))
		} else {
			parts = append(parts, mutedStyle.Render("[ ] "+label))
		}
	}
	return strings.Join(parts, "  ")
}

// bar draws value/limit as a fixed-width row of blocks.
func bar(value, limit float64, width int) string {
	if limit <= 0 {
		return strings.Repeat("░", width)
	}
	n := int(value / limit * float64(width))
	if n > width {
		n = width
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func renderStats(a *app, rng stats.Range, sum stats.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(a.t("statsTitle", nil)+" · "+a.t("stats."+string(rng), nil)) + "\n")

	if sum.Empty() {
		b.WriteString(panelStyle.Render(a.t("stats.noDataTitle", nil)+"\n"+mutedStyle.Render(a.t("stats.noDataDesc", nil))) + "\n")
		return b.String()
	}

	avgMood := "-"
	if sum.AverageMood != nil {
		avgMood = fmt.Sprintf("%.1f", *sum.AverageMood)
		if m, ok := models.MoodForScore(int(*sum.AverageMood + 0.5)); ok {
			avgMood += " " + string(m)
		}
	}
	cards := []string{
		panelStyle.Render(labelStyle.Render(a.t("stats.entries", nil)) + "\n" + fmt.Sprint(sum.EntryCount)),
		panelStyle.Render(labelStyle.Render(a.t("stats.avgMood", nil)) + "\n" + avgMood),
		panelStyle.Render(labelStyle.Render(a.t("stats.avgChecklist", nil)) + "\n" + fmt.Sprintf("%.1f / %d", sum.AverageChecklist, len(models.Catalog()))),
		panelStyle.Render(labelStyle.Render(a.t("stats.streak", nil)) + "\n" + fmt.Sprint(sum.CurrentStreak)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n\n")

	b.WriteString(labelStyle.Render(a.t("stats.trendTitle", nil)) + "\n")
	for _, p := range sum.Trend {
		mood := "  "
		if p.Mood != nil {
			if m, ok := models.MoodForScore(*p.Mood); ok {
				mood = string(m)
			}
		}
		fmt.Fprintf(&b, "%s %s %s\n", p.Date, mood, bar(float64(p.Checklist), float64(len(models.Catalog())), 10))
	}

	b.WriteString("\n" + labelStyle.Render(a.t("stats.freqTitle", nil)) + "\n")
	most := 0
	for _, f := range sum.Frequency {
		if f.Count > most {
			most = f.Count
		}
	}
	for _, f := range sum.Frequency {
		fmt.Fprintf(&b, "%-12s %s %d\n", a.t("checklist."+string(f.Activity), nil), bar(float64(f.Count), float64(most), 20), f.Count)
	}
	return b.String()
}
