package output

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/neteinstein/pickaname/pkg/core"
)

// ImportRuns renders a list of import runs, newest first, as a table.
func (r *Renderer) ImportRuns(title string, runs []*core.ImportRun) {
	r.Header(2, title)

	if r.EffectiveMode() == ModeMarkdown {
		r.Println("| Started | Status | Succeeded | Failed | Source |")
		r.Println("| --- | --- | --- | --- | --- |")
		for _, run := range runs {
			r.Printf("| %s | %s | %d | %d | %s |\n",
				run.StartedAt.Local().Format(time.RFC3339), run.Status, run.Succeeded, run.Failed, escapeMarkdown(run.Source))
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "Status", "Succeeded", "Failed", "Source"})
	for _, run := range runs {
		t.AppendRow(table.Row{run.StartedAt.Local().Format(time.RFC3339), run.Status, run.Succeeded, run.Failed, run.Source})
	}
	t.Render()
}
