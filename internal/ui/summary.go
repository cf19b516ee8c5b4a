package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

const labelWidth = 20

type field struct {
	label string
	value string
}

func summaryFields(result *gioimport.ImportResult) []field {
	return []field{
		{"Information object", result.Work},
		{"Expression", result.Expression},
		{"Name", result.Name},
		{"Group location", fmt.Sprintf("%d (%s)", result.GroupLocationID, result.GeometryClass)},
		{"Locations", fmt.Sprintf("%d (%d new geometries, %d reused)",
			result.Locations, result.GeometriesInserted, result.GeometriesReused)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
}

// WriteSummary prints the outcome of a successful import to w. When styled
// is false the output is plain aligned text suitable for logs.
func WriteSummary(w io.Writer, result *gioimport.ImportResult, styled bool) error {
	fields := summaryFields(result)

	if !styled {
		var b strings.Builder
		fmt.Fprintf(&b, "%s Import completed\n", SymbolCheck)
		for _, f := range fields {
			fmt.Fprintf(&b, "  %-*s %s\n", labelWidth, f.label, f.value)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	s := newStyles(lipgloss.NewRenderer(w))
	rows := make([]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(f.label), s.value.Render(f.value)))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.success.Render(SymbolCheck+" ")+s.title.Render("Import completed"),
		"",
		strings.Join(rows, "\n"),
	)
	_, err := fmt.Fprintln(w, s.box.Render(body))
	return err
}

// WriteFailure prints err with its exit code to w.
func WriteFailure(w io.Writer, err error, styled bool) error {
	code := gioimport.ExitCodeForError(err)
	if !styled {
		_, werr := fmt.Fprintf(w, "%s Import failed (exit %d): %v\n", SymbolCross, code, err)
		return werr
	}

	s := newStyles(lipgloss.NewRenderer(w))
	_, werr := fmt.Fprintf(w, "%s %v\n", s.failure.Render(fmt.Sprintf("%s Import failed (exit %d):", SymbolCross, code)), err)
	return werr
}
