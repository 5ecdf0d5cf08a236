package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Colors of the side-by-side diff columns.
var (
	MetaColor   = color.New(color.FgCyan)
	DeleteColor = color.New(color.FgRed)
	AddColor    = color.New(color.FgGreen)
)

// noPatchText is shown for files whose patch the API omitted.
const noPatchText = "no patch available"

// WriteCommitDiff prints a side-by-side diff of every file of a commit or range.
func WriteCommitDiff(result schema.CommitDiffResult, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "diff",
		json:      result,
		csvHeader: []string{"file", "kind", "original", "changed"},
		csvRows: func(w *csv.Writer) error {
			for _, f := range result.Files {
				for _, r := range f.Rows {
					if err := w.Write([]string{f.Filename, string(r.Kind), r.Left, r.Right}); err != nil {
						return err
					}
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			return writeSideBySide(w, result, cfg)
		},
	})
}

// WriteSecrets prints the probable credentials found in a commit or range.
func WriteSecrets(result schema.CommitDiffResult, cfg *contract.Config) error {
	type secretsJSON struct {
		Repo     string                 `json:"repo"`
		Ref      string                 `json:"ref"`
		Findings []schema.SecretFinding `json:"findings"`
	}
	return render(cfg, renderer{
		name:      "secret findings",
		json:      secretsJSON{Repo: result.Repo, Ref: result.Ref, Findings: result.Findings},
		csvHeader: []string{"file", "match"},
		csvRows: func(w *csv.Writer) error {
			for _, f := range result.Findings {
				if err := w.Write([]string{f.Filename, f.Match}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			return writeFindings(w, result, cfg)
		},
	})
}

// diffColumnWidth splits the terminal between the two columns.
func diffColumnWidth(cfg *contract.Config) int {
	return max(20, (terminalWidth(cfg)-7)/2)
}

// clip cuts s to width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width < 4 {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// diffCells returns the colored left and right cells of a row.
func diffCells(r schema.DiffRow, width int) (string, string) {
	left := clip(strings.ReplaceAll(r.Left, "\t", "    "), width)
	right := clip(strings.ReplaceAll(r.Right, "\t", "    "), width)
	switch r.Kind {
	case schema.MetaRow:
		return MetaColor.Sprint(left), MetaColor.Sprint(right)
	case schema.DeleteRow:
		return DeleteColor.Sprint(left), right
	case schema.AddRow:
		return left, AddColor.Sprint(right)
	default:
		return left, right
	}
}

func writeSideBySide(w io.Writer, result schema.CommitDiffResult, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s @ %s", result.Repo, result.Ref); err != nil {
		return err
	}
	if result.Author != "" {
		if _, err := fmt.Fprintf(w, " by %s", result.Author); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if msg := firstLine(result.Message); msg != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", msg); err != nil {
			return err
		}
	}

	width := diffColumnWidth(cfg)
	for _, f := range result.Files {
		if _, err := fmt.Fprintf(w, "\n%s (%s, +%d -%d)\n", f.Filename, f.Status, f.Additions, f.Deletions); err != nil {
			return err
		}
		if f.NoPatch || len(f.Rows) == 0 {
			if _, err := fmt.Fprintf(w, "  %s\n", noPatchText); err != nil {
				return err
			}
			continue
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Original", "Changed"})
		table.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.Global = tw.AlignLeft
			c.Row.Formatting.AutoWrap = tw.WrapNone
		})
		data := make([][]string, 0, len(f.Rows))
		for _, r := range f.Rows {
			left, right := diffCells(r, width)
			data = append(data, []string{left, right})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}

	if len(result.Findings) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return writeFindings(w, result, cfg)
	}
	return nil
}

func writeFindings(w io.Writer, result schema.CommitDiffResult, cfg *contract.Config) error {
	if len(result.Findings) == 0 {
		_, err := fmt.Fprintf(w, "No probable secrets found in %s\n", result.Ref)
		return err
	}
	table := newTable(w, "File", "Match")
	pathWidth := getMaxTablePathWidth(cfg, 30)
	var data [][]string
	for _, f := range result.Findings {
		data = append(data, []string{contract.TruncatePath(f.Filename, pathWidth), contract.CriticalColor.Sprint(f.Match)})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d files with probable secrets in %s. Review them before sharing this change.\n", len(result.Findings), result.Ref)
	return err
}

// firstLine returns the subject line of a commit message.
func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return strings.TrimSpace(line)
}
