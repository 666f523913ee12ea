package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/david-erel/short-tube/internal/highlight"
)

func renderPlanTable(segs []highlight.Segment) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Length", "Score", "Why"})

	for i, seg := range segs {
		tw.AppendRow(table.Row{
			i + 1,
			formatTimestamp(seg.Start),
			formatTimestamp(seg.End),
			fmt.Sprintf("%.1fs", seg.Duration()),
			fmt.Sprintf("%.2f", seg.Score),
			seg.Reasoning,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, WidthMax: 48},
	})

	return tw.Render()
}

// formatTimestamp renders seconds as m:ss, or h:mm:ss past the hour mark.
func formatTimestamp(sec float64) string {
	d := time.Duration(sec * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
