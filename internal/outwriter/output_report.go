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

// WriteReport prints every section of a repository report.
func WriteReport(report schema.Report, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return render(cfg, renderer{
		name:      "report",
		json:      report,
		csvHeader: []string{"section", "name", "value"},
		csvRows: func(w *csv.Writer) error {
			return writeRows(w, reportCSVRows(report, fmtFloat))
		},
		text: func(w io.Writer) error {
			sections := []struct {
				title string
				write func() error
			}{
				{"CHURN", func() error { return writeChurnTables(w, report.Churn, cfg, fmtFloat, intFmt) }},
				{"ACTIVITY", func() error { return writeHeatmapGrid(w, report.Heatmap) }},
				{"BRANCHES", func() error { return writeBranchTable(w, report.Branches, cfg) }},
				{"PULL REQUESTS", func() error { return writePRTables(w, report.PRs) }},
				{"OVERVIEW", func() error { return writeOverviewTables(w, report.Overview, fmtFloat) }},
			}
			for _, s := range sections {
				if _, err := fmt.Fprintf(w, "\n== %s ==\n", s.title); err != nil {
					return err
				}
				if err := s.write(); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "\nReport for %s completed in %v with %d workers. Cache backend: %s\n",
				report.Repo, duration, cfg.Workers, cfg.CacheBackend)
			return err
		},
	})
}

// reportCSVRows flattens the report into section/name/value triples.
func reportCSVRows(report schema.Report, fmtFloat func(float64) string) [][]string {
	var rows [][]string
	for _, f := range report.Churn.TopFiles {
		rows = append(rows, []string{"churn", f.Filename, strconv.Itoa(f.Changes)})
	}
	for _, f := range report.Churn.RiskyFiles {
		rows = append(rows, []string{"risk", f.Filename, fmtFloat(f.Score)})
	}
	for _, c := range report.Heatmap.Cells {
		rows = append(rows, []string{"activity", c.Date, strconv.Itoa(c.Count)})
	}
	for _, b := range report.Branches.Rankings.Ranked {
		rows = append(rows, []string{"branch_health", b.Name, strconv.Itoa(report.Branches.Rankings.Health[b.Name])})
	}
	for _, r := range prCSVRows(report.PRs.Aggregate) {
		name := r[0]
		if r[1] != "" {
			name += ":" + r[1]
		}
		rows = append(rows, []string{"prs", name, r[2]})
	}
	for _, r := range overviewCSVRows(report.Overview, fmtFloat) {
		rows = append(rows, []string{"overview", r[0] + ":" + r[1], r[2]})
	}
	return rows
}
