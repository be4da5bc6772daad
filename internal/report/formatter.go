package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"KeplerLens/internal/model"
)

// FormatSearching announces the start of a fetch.
func FormatSearching(q model.Query, source string) string {
	target := fmt.Sprintf("KIC %d", q.Star.CatalogID)
	if q.Star.Name != "" {
		target = fmt.Sprintf("%s (KIC %d)", q.Star.Name, q.Star.CatalogID)
	}
	if q.HasQuarter() {
		return fmt.Sprintf("Searching %s for %s, quarter %d...\n", source, target, q.Quarter)
	}
	return fmt.Sprintf("Searching %s for all data of %s...\n", source, target)
}

// FormatRunSummary describes the outcome of one run.
func FormatRunSummary(run *model.RunRecord) string {
	var b strings.Builder

	switch run.Status {
	case model.RunSucceeded:
		b.WriteString(fmt.Sprintf("Plot saved to %s\n", run.OutputPath))
	case model.RunNotFound:
		b.WriteString(fmt.Sprintf("No data found for %s.\n", describeTarget(run)))
	case model.RunEmpty:
		b.WriteString(fmt.Sprintf("No samples left to plot for %s after cleaning.\n", describeTarget(run)))
	default:
		b.WriteString(fmt.Sprintf("Run failed for %s: %s\n", describeTarget(run), run.Error))
	}

	if run.RawSamples > 0 {
		b.WriteString(fmt.Sprintf("  samples: %d raw, %d clean\n", run.RawSamples, run.CleanSamples))
	}
	b.WriteString(fmt.Sprintf("  job %s [%s] took %s\n", run.Job, run.Status, run.Duration().Round(time.Millisecond)))
	return b.String()
}

func describeTarget(run *model.RunRecord) string {
	s := run.Star.DisplayName()
	if run.Star.Name != "" {
		s = fmt.Sprintf("%s (KIC %d)", run.Star.Name, run.Star.CatalogID)
	}
	if run.Quarter != model.AllQuarters {
		s += fmt.Sprintf(" in quarter %d", run.Quarter)
	}
	return s
}

var historyHeader = []string{"STARTED", "JOB", "STAR", "Q", "STATUS", "SAMPLES", "DURATION", "OUTPUT"}

// FormatHistory renders runs as an aligned text table. Star names may hold
// wide runes, so widths are measured in display cells.
func FormatHistory(runs []model.RunRecord) string {
	if len(runs) == 0 {
		return "No runs recorded yet.\n"
	}

	table := [][]string{historyHeader}
	for _, r := range runs {
		quarter := "all"
		if r.Quarter != model.AllQuarters {
			quarter = strconv.Itoa(r.Quarter)
		}
		output := r.OutputPath
		if output == "" {
			output = "-"
		}
		table = append(table, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Job,
			r.Star.DisplayName(),
			quarter,
			string(r.Status),
			fmt.Sprintf("%d/%d", r.CleanSamples, r.RawSamples),
			r.Duration().Round(time.Millisecond).String(),
			output,
		})
	}

	widths := make([]int, len(historyHeader))
	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range table {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
