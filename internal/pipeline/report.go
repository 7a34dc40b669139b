package pipeline

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"elecciones/internal/models"
)

// Report summarizes one pipeline run
type Report struct {
	Pipeline      models.Pipeline
	Sources       int
	Found         int
	Duplicates    int
	AssetsFetched int
	AssetsFailed  int
	AssetBytes    int
	Inserted      int
	Skipped       int
	Aborted       bool
	Duration      time.Duration
}

// RenderReports writes the reports as one summary table
func RenderReports(w io.Writer, reports ...Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		"pipeline", "sources", "found", "duplicates", "assets", "failed assets",
		"downloaded", "inserted", "skipped", "status", "took",
	})
	for _, r := range reports {
		status := "ok"
		if r.Aborted {
			status = "aborted"
		}
		t.AppendRow(table.Row{
			r.Pipeline, r.Sources, r.Found, r.Duplicates, r.AssetsFetched, r.AssetsFailed,
			humanize.Bytes(uint64(r.AssetBytes)), r.Inserted, r.Skipped, status,
			r.Duration.Round(time.Millisecond),
		})
	}
	t.Render()
}
