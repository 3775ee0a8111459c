package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"plagdesk/internal/application/listutil"
	"plagdesk/internal/application/projections"
	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/result"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// levelColors covers both the banded labels and the server's distribution names.
var levelColors = map[string]lipgloss.Color{
	result.LevelLow:      "42",
	"Medium":             "214",
	result.LevelModerate: "214",
	result.LevelHigh:     "196",
}

func levelStyle(level string) lipgloss.Style {
	c, ok := levelColors[level]
	if !ok {
		return dimStyle
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// renderResult formats the normalized detail view.
func renderResult(d projections.ResultDetail) string {
	n := d.Result
	var b strings.Builder

	title := "Comparison"
	files := n.File1Name + " vs " + n.File2Name
	if n.IsInternet {
		title = "Internet check"
		files = n.File1Name
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s #%s", title, n.ResultID)) + "\n")
	b.WriteString(files)
	if n.CreatedAt != "" {
		b.WriteString(dimStyle.Render("  " + n.CreatedAt))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score  %s  %s\n\n", headerStyle.Render(pct(n.Score)), levelStyle(n.Level).Render(n.Level))

	rows := []struct {
		name  string
		value float64
	}{
		{"Exact", n.Components.Exact},
		{"Minimal", n.Components.Minimal},
		{"Moderate", n.Components.Moderate},
		{"High", n.Components.High},
	}
	var comp strings.Builder
	for i, r := range rows {
		if i > 0 {
			comp.WriteString("\n")
		}
		fmt.Fprintf(&comp, "%-9s %7s", r.name, pct(r.value))
	}
	b.WriteString(boxStyle.Render(comp.String()) + "\n")

	if n.IsInternet {
		b.WriteString("\n" + headerStyle.Render("Top matches") + "\n")
		if len(d.TopMatches) == 0 {
			b.WriteString(dimStyle.Render("No matching sources found.") + "\n")
		}
		for i, m := range d.TopMatches {
			fmt.Fprintf(&b, "%d. %s  %s\n", i+1, m.Label, pct(m.Score))
		}
	}
	return b.String()
}

// renderHistory formats one page of history with its pager line.
func renderHistory(h projections.HistoryResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("History") + dimStyle.Render(fmt.Sprintf("  %d results", h.Page.TotalResults)) + "\n")
	if len(h.Page.Results) == 0 {
		b.WriteString(dimStyle.Render("No results on this page.") + "\n")
		return b.String()
	}
	for _, s := range h.Page.Results {
		b.WriteString(summaryLine(s) + "\n")
	}
	if h.Info.ShowPagination() {
		b.WriteString(dimStyle.Render(pagerLine(h.Info)) + "\n")
	}
	return b.String()
}

func summaryLine(s result.Summary) string {
	files := s.File1Name
	if !s.IsInternet() {
		files += " vs " + s.File2Name
	}
	return fmt.Sprintf("%6s  %-40s %7s  %s  %s",
		"#"+s.ResultID.String(), files, pct(s.PlagiarismScore.OrZero()),
		levelStyle(s.Level).Render(s.Level), dimStyle.Render(s.CreatedAt))
}

func pagerLine(info listutil.PageInfo) string {
	line := fmt.Sprintf("Page %d of %d (rows %d-%d)", info.Page, info.TotalPages, info.StartRow(), info.EndRow())
	if info.HasNext() {
		line += fmt.Sprintf("  next: --page %d", info.Page+1)
	}
	return line
}

// renderDashboard formats analytics and the recent list.
func renderDashboard(d projections.DashboardResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard") + "\n")
	fmt.Fprintf(&b, "Total checks   %d\n", d.Analytics.TotalChecks)
	fmt.Fprintf(&b, "Average score  %s\n", pct(d.Analytics.AverageScore.OrZero()))
	fmt.Fprintf(&b, "Highest score  %s\n", pct(d.Analytics.HighestScore.OrZero()))
	for _, lc := range d.Distribution {
		fmt.Fprintf(&b, "  %s %d\n", levelStyle(lc.Level).Render(fmt.Sprintf("%-6s", lc.Level)), lc.Count)
	}
	b.WriteString("\n" + headerStyle.Render("Recent results") + "\n")
	if len(d.Recent) == 0 {
		b.WriteString(dimStyle.Render("No checks yet.") + "\n")
	}
	for _, s := range d.Recent {
		b.WriteString(summaryLine(s) + "\n")
	}
	return b.String()
}

// renderStages formats the indicator; spin is drawn beside the active stage.
func renderStages(stages []check.Stage, spin string) string {
	var b strings.Builder
	for _, s := range stages {
		switch s.Status {
		case check.StageDone:
			b.WriteString(doneStyle.Render("✓ "+s.Name) + "\n")
		case check.StageActive:
			b.WriteString(spin + " " + s.Name + "\n")
		default:
			b.WriteString(dimStyle.Render("· "+s.Name) + "\n")
		}
	}
	return b.String()
}
