package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"golang.org/x/text/width"
)

type TableConfig struct {
	MinColumnWidth int
	MaxColumnWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinColumnWidth: 4,
		MaxColumnWidth: 40,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const reportTemplate = `
{{.Title}}
Source: {{.Source}} (loaded {{.LoadedAt.Format "2006-01-02 15:04:05"}})
{{range .Sections}}
=== {{.Title}} ===
{{if .Rows}}{{$w := widths .}}{{separator $w}}
{{formatRow $w .Columns}}
{{separator $w}}
{{range .Rows}}{{formatRow $w .}}
{{end}}{{separator $w}}
{{else}}{{.Empty}}
{{end}}{{end}}{{range .Notes}}
Note: {{.}}
{{end}}`

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"widths": c.widths,
		"formatRow": func(widths []int, cells []string) string {
			var b strings.Builder
			b.WriteString("|")
			for i, w := range widths {
				cell := ""
				if i < len(cells) {
					cell = clip(cells[i], w)
				}
				fmt.Fprintf(&b, " %s%s |", cell, strings.Repeat(" ", w-displayWidth(cell)))
			}
			return b.String()
		},
		"separator": func(widths []int) string {
			var b strings.Builder
			b.WriteString("+")
			for _, w := range widths {
				b.WriteString(strings.Repeat("-", w+2))
				b.WriteString("+")
			}
			return b.String()
		},
	}

	t, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func (c *Reporter) widths(section domain.ReportSection) []int {
	widths := make([]int, len(section.Columns))
	for i, col := range section.Columns {
		widths[i] = max(c.config.MinColumnWidth, displayWidth(col))
	}
	for _, row := range section.Rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], displayWidth(row[i]))
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], c.config.MaxColumnWidth)
	}
	return widths
}

// displayWidth counts terminal columns: wide and fullwidth East Asian runes
// take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// clip shortens s to at most w columns, marking the cut with an ellipsis.
func clip(s string, w int) string {
	if displayWidth(s) <= w {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := runeWidth(r)
		if used+rw > w-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	b.WriteString("…")
	return b.String()
}
