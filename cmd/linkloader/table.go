package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Belphemur/MovieLinks/internal/models"
)

// maxListedDifferences caps the rows printed per difference kind by verify.
const maxListedDifferences = 20

// newTable returns a rounded table with the given header. Columns listed in
// rightAligned (1-based) hold numbers and are right aligned.
func newTable(header table.Row, rightAligned ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, n := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func renderSummary(s *models.ImportSummary) string {
	var inserted any = s.Inserted
	if s.DryRun {
		inserted = fmt.Sprintf("%d (dry run)", s.Inserted)
	}

	tw := newTable(table.Row{"Import", "Value"}, 2)
	tw.AppendRows([]table.Row{
		{"Run", s.RunID},
		{"Source", s.Source},
		{"Table", s.Driver + ":" + s.Table},
		{"Mode", s.Mode},
		{"Read", s.Read},
		{"Inserted", inserted},
		{"Skipped", s.Skipped},
		{"Rejected", s.Rejected},
		{"Failed", s.Failed},
		{"Duration", s.Duration.Round(time.Millisecond)},
	})
	return tw.Render()
}

func renderVerifyReport(r *models.VerifyReport) string {
	var sb strings.Builder

	counts := newTable(table.Row{"Verify", "Rows"}, 2)
	counts.AppendRows([]table.Row{
		{"Checked", r.Checked},
		{"Matched", r.Matched},
		{"Missing", len(r.Missing)},
		{"Mismatched", len(r.Mismatched)},
		{"Invalid", r.Invalid},
	})
	sb.WriteString(counts.Render())

	if len(r.Missing) > 0 {
		tw := newTable(table.Row{"movieId", "tmdbId", "imdbId"}, 1, 2)
		for _, l := range r.Missing[:min(len(r.Missing), maxListedDifferences)] {
			tw.AppendRow(table.Row{l.MovieID, l.TMDBID, l.IMDBTag()})
		}
		sb.WriteString("\nMissing\n")
		sb.WriteString(tw.Render())
	}

	if len(r.Mismatched) > 0 {
		tw := newTable(table.Row{"Line", "movieId", "tmdbId", "imdbId"}, 1, 2)
		for _, m := range r.Mismatched[:min(len(r.Mismatched), maxListedDifferences)] {
			tw.AppendRow(table.Row{
				m.Line,
				m.Source.MovieID,
				fmt.Sprintf("%d / %d", m.Source.TMDBID, m.Stored.TMDBID),
				m.Source.IMDBTag() + " / " + m.Stored.IMDBTag(),
			})
		}
		sb.WriteString("\nMismatched (file / table)\n")
		sb.WriteString(tw.Render())
	}
	return sb.String()
}
