package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// WriteChurn prints the most changed and the riskiest files of a churn run.
func WriteChurn(result schema.ChurnResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return render(cfg, renderer{
		name:      "churn",
		json:      churnJSON(result),
		csvHeader: churnCSVHeader,
		csvRows: func(w *csv.Writer) error {
			return writeRows(w, churnCSVRows(result, fmtFloat, intFmt))
		},
		text: func(w io.Writer) error {
			if err := writeChurnTables(w, result, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Churn completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
			return err
		},
	})
}

// labeledRisk is a risky file with its relative label for JSON output.
type labeledRisk struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	schema.RiskyFile
}

type churnJSONResult struct {
	schema.ChurnResult
	RiskyFiles []labeledRisk `json:"risky_files"`
}

func churnJSON(result schema.ChurnResult) churnJSONResult {
	highest := highestRisk(result.RiskyFiles)
	risky := make([]labeledRisk, len(result.RiskyFiles))
	for i, f := range result.RiskyFiles {
		risky[i] = labeledRisk{Rank: i + 1, Label: schema.GetPlainLabel(f.Score, highest), RiskyFile: f}
	}
	return churnJSONResult{ChurnResult: result, RiskyFiles: risky}
}

var churnCSVHeader = []string{"section", "rank", "file", "additions", "deletions", "changes", "edit_count", "score", "label"}

// churnCSVRows flattens both rankings into one sheet distinguished by section.
func churnCSVRows(result schema.ChurnResult, fmtFloat func(float64) string, intFmt string) [][]string {
	rows := make([][]string, 0, len(result.TopFiles)+len(result.RiskyFiles))
	for i, f := range result.TopFiles {
		rows = append(rows, []string{
			"top",
			strconv.Itoa(i + 1),
			f.Filename,
			fmt.Sprintf(intFmt, f.Additions),
			fmt.Sprintf(intFmt, f.Deletions),
			fmt.Sprintf(intFmt, f.Changes),
			fmt.Sprintf(intFmt, f.EditCount),
			"",
			"",
		})
	}
	highest := highestRisk(result.RiskyFiles)
	for i, f := range result.RiskyFiles {
		rows = append(rows, []string{
			"risky",
			strconv.Itoa(i + 1),
			f.Filename,
			fmt.Sprintf(intFmt, f.Additions),
			fmt.Sprintf(intFmt, f.Deletions),
			fmt.Sprintf(intFmt, f.Changes),
			fmt.Sprintf(intFmt, f.EditCount),
			fmtFloat(f.Score),
			schema.GetPlainLabel(f.Score, highest),
		})
	}
	return rows
}

// writeChurnTables prints the top-files table followed by the risky-files table.
func writeChurnTables(w io.Writer, result schema.ChurnResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if _, err := fmt.Fprintf(w, "Top %d files by churn across %d commits of %s (%d skipped)\n",
		len(result.TopFiles), result.CommitsSampled, result.Repo, result.CommitsSkipped); err != nil {
		return err
	}
	pathWidth := getMaxTablePathWidth(cfg, 40)
	top := newTable(w, "Rank", "Path", "Changes", "Added", "Deleted", "Edits")
	var data [][]string
	for i, f := range result.TopFiles {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Filename, pathWidth),
			fmt.Sprintf(intFmt, f.Changes),
			fmt.Sprintf(intFmt, f.Additions),
			fmt.Sprintf(intFmt, f.Deletions),
			fmt.Sprintf(intFmt, f.EditCount),
		})
	}
	if err := renderTable(top, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nTop %d risky files\n", len(result.RiskyFiles)); err != nil {
		return err
	}
	highest := highestRisk(result.RiskyFiles)
	risky := newTable(w, "Rank", "Path", "Score", "Label", "Edits")
	data = nil
	for i, f := range result.RiskyFiles {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Filename, pathWidth),
			fmtFloat(f.Score),
			contract.GetColorLabel(f.Score, highest),
			fmt.Sprintf(intFmt, f.EditCount),
		})
	}
	if err := renderTable(risky, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d files\n", len(result.TopFiles), result.TotalFiles)
	return err
}

// highestRisk returns the first score of a list sorted by descending risk.
func highestRisk(files []schema.RiskyFile) float64 {
	if len(files) == 0 {
		return 0
	}
	return files[0].Score
}
