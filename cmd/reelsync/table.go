package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reelsync/internal/sync"
)

// renderPairs renders the key/value tables used by sync, status, and config
// show. Numeric value columns read better right-aligned.
func renderPairs(keyHeader, valueHeader string, numericValues bool, pairs [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{keyHeader, valueHeader})
	for _, pair := range pairs {
		tw.AppendRow(table.Row{pair[0], pair[1]})
	}

	valueAlign := text.AlignLeft
	if numericValues {
		valueAlign = text.AlignRight
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: valueAlign, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderReviewReport renders the orchestrator counts as a single row.
func renderReviewReport(report sync.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Processed", "Updated", "Skipped", "Errored"})
	tw.AppendRow(table.Row{
		formatCount(report.Processed),
		formatCount(report.Updated),
		formatCount(report.Skipped),
		formatCount(report.Errored),
	})

	configs := make([]table.ColumnConfig, 0, 4)
	for column := 1; column <= 4; column++ {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
