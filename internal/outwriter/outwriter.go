// Package outwriter renders command results as text tables, CSV or JSON.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// renderer bundles the three renditions of one result.
type renderer struct {
	name      string // Used in the "Wrote ..." message
	json      any
	csvHeader []string
	csvRows   func(*csv.Writer) error
	text      func(io.Writer) error
}

// render dispatches on the configured output format.
func render(cfg *contract.Config, r renderer) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, r.json)
		}, "Wrote JSON "+r.name); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, r.csvHeader, r.csvRows)
		}, "Wrote CSV "+r.name); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, r.text, "Wrote "+r.name); err != nil {
			return fmt.Errorf("error writing %s table output: %w", r.name, err)
		}
	}
	return nil
}

// newTable returns a right-aligned table with the given headers.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable fills and renders a table in one step.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// terminalWidth returns the width override, the detected width of stdout,
// or 80 when neither is available.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Conservative default for CI and pipes
	}
	return width
}

// getMaxTablePathWidth returns the space left for a path column once the
// other columns (reserved) and the table borders are accounted for.
func getMaxTablePathWidth(cfg *contract.Config, reserved int) int {
	available := terminalWidth(cfg) - reserved - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// shortSHA abbreviates a commit id the way git does.
func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
