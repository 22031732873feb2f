package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/neteinstein/pickaname/pkg/core"
)

// Names renders a list of names in the effective mode.
func (r *Renderer) Names(title string, names []core.Name) error {
	if names == nil {
		names = []core.Name{}
	}
	if ok, err := r.Structured(names); ok {
		return err
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Header(1, fmt.Sprintf("%s (%d)", title, len(names)))
		if len(names) == 0 {
			r.Println("_No names._")
			return nil
		}
		r.Println("| ID | Name | Gender | Notes |")
		r.Println("| --- | --- | --- | --- |")
		for _, n := range names {
			r.Printf("| %d | %s | %s | %s |\n", n.ID, escapeMarkdown(n.Name), n.Gender.DisplayText(), escapeMarkdown(n.Notes))
		}
		return nil
	}

	r.Header(1, fmt.Sprintf("%s (%d)", title, len(names)))
	if len(names) == 0 {
		r.Muted("(0 names)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Gender", "Notes"})
	for _, n := range names {
		t.AppendRow(table.Row{n.ID, n.Name, n.Gender.DisplayText(), n.Notes})
	}
	t.Render()
	return nil
}

// Name renders the detail view of one name.
func (r *Renderer) Name(n core.Name) error {
	if ok, err := r.Structured(n); ok {
		return err
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Header(1, n.Name)
		r.Printf("- **ID:** %d\n", n.ID)
		r.Printf("- **Gender:** %s\n", orDash(n.Gender.DisplayText()))
		r.Printf("- **Notes:** %s\n", orDash(n.Notes))
		return nil
	}

	r.Println(detailCard(n, r.isTTY))
	return nil
}

func detailCard(n core.Name, styled bool) string {
	label := lipgloss.NewStyle().Bold(true).Width(8)
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	box := lipgloss.NewStyle().Padding(0, 1)
	if styled {
		title = title.Foreground(lipgloss.Color("12"))
		box = box.Border(lipgloss.RoundedBorder())
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title.Render(n.Name),
		label.Render("ID")+strconv.FormatInt(n.ID, 10),
		label.Render("Gender")+orDash(n.Gender.DisplayText()),
		label.Render("Notes")+orDash(n.Notes),
	)
	return box.Render(body)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
