package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wippyai/wasm-codecs/internal/i18n"
	"github.com/wippyai/wasm-codecs/loader"
)

var stateStyles = map[loader.State]lipgloss.Style{
	loader.Unloaded: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	loader.Loading:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	loader.Ready:    lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	loader.Failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func stateLabel(p *i18n.Printer, s loader.State, color bool) string {
	label := p.T("state." + s.String())
	if !color {
		return label
	}
	return stateStyles[s].Render(label)
}

// displayName renders a module name the way the self-test messages show it.
func displayName(name string) string {
	switch name {
	case "zstd", "lz4":
		return strings.ToUpper(name)
	}
	return cases.Title(language.English).String(name)
}

type statusJSON struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind,omitempty"`
	Source     string  `json:"source,omitempty"`
	State      string  `json:"state"`
	Error      string  `json:"error,omitempty"`
	Level      int     `json:"level"`
	Generation uint64  `json:"generation"`
	LoadMillis float64 `json:"load_ms,omitempty"`
}

func writeStatus(w io.Writer, p *i18n.Printer, format string, snap []loader.Status) error {
	if format == "json" {
		rows := make([]statusJSON, 0, len(snap))
		for _, st := range snap {
			row := statusJSON{
				Name:       st.Name,
				Kind:       st.Spec.Kind,
				Source:     st.Spec.Source,
				State:      st.State.String(),
				Level:      st.Spec.Level,
				Generation: st.Generation,
			}
			if st.Ready() {
				row.LoadMillis = float64(st.LoadDuration) / float64(time.Millisecond)
			}
			if st.Err != nil {
				row.Error = st.Err.Error()
			}
			rows = append(rows, row)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	color := isTerminal(w)
	table := tablewriter.NewWriter(w)
	table.Header(
		p.T("status.module"),
		p.T("status.kind"),
		p.T("status.state"),
		p.T("status.level"),
		p.T("status.generation"),
		p.T("status.load_time"),
		p.T("status.error"),
	)

	for _, st := range snap {
		loadTime, errText := "-", ""
		if st.Ready() {
			loadTime = st.LoadDuration.Round(time.Microsecond).String()
		}
		if st.Err != nil {
			errText = st.Err.Error()
		}
		if err := table.Append(
			st.Name,
			st.Spec.Kind,
			stateLabel(p, st.State, color),
			st.Spec.Level,
			st.Generation,
			loadTime,
			errText,
		); err != nil {
			return err
		}
	}
	return table.Render()
}
