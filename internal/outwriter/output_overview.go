package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// WriteOverview prints the repository overview.
func WriteOverview(result schema.OverviewResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return render(cfg, renderer{
		name:      "overview",
		json:      result,
		csvHeader: []string{"section", "name", "value"},
		csvRows: func(w *csv.Writer) error {
			return writeRows(w, overviewCSVRows(result, fmtFloat))
		},
		text: func(w io.Writer) error {
			return writeOverviewTables(w, result, fmtFloat)
		},
	})
}

// licenseName returns the display name of a possibly missing license.
func licenseName(l *schema.License) string {
	if l == nil {
		return "None"
	}
	if l.SPDXID != "" && l.SPDXID != "NOASSERTION" {
		return l.SPDXID
	}
	return l.Name
}

// overviewCSVRows flattens the overview into section/name/value triples.
func overviewCSVRows(result schema.OverviewResult, fmtFloat func(float64) string) [][]string {
	rows := [][]string{
		{"repo", "default_branch", result.DefaultBranch},
		{"repo", "stars", strconv.Itoa(result.Stars)},
		{"repo", "forks", strconv.Itoa(result.Forks)},
		{"repo", "license", licenseName(result.License)},
		{"totals", "commits", strconv.Itoa(result.Totals.Commits)},
		{"totals", "open_issues", strconv.Itoa(result.Totals.OpenIssues)},
		{"totals", "pull_requests", strconv.Itoa(result.Totals.PullRequests)},
	}
	for _, l := range result.Languages {
		rows = append(rows, []string{"language", l.Name, fmtFloat(l.Percent)})
	}
	for _, c := range result.Contributors {
		rows = append(rows, []string{"contributor", c.Login, strconv.Itoa(c.Contributions)})
	}
	for _, m := range result.Manifests {
		rows = append(rows, []string{"manifest", m.Path, m.Hint})
	}
	return rows
}

func writeOverviewTables(w io.Writer, result schema.OverviewResult, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s\n", result.Repo); err != nil {
		return err
	}
	if result.Description != "" {
		if _, err := fmt.Fprintf(w, "%s\n", result.Description); err != nil {
			return err
		}
	}

	summary := newTable(w, "Branch", "Stars", "Forks", "License", "Commits", "Open Issues", "Pull Requests")
	if err := renderTable(summary, [][]string{{
		result.DefaultBranch,
		strconv.Itoa(result.Stars),
		strconv.Itoa(result.Forks),
		licenseName(result.License),
		strconv.Itoa(result.Totals.Commits),
		strconv.Itoa(result.Totals.OpenIssues),
		strconv.Itoa(result.Totals.PullRequests),
	}}); err != nil {
		return err
	}

	if len(result.Languages) > 0 {
		languages := newTable(w, "Language", "Bytes", "Share %")
		var data [][]string
		for _, l := range result.Languages {
			data = append(data, []string{l.Name, strconv.Itoa(l.Bytes), fmtFloat(l.Percent)})
		}
		if err := renderTable(languages, data); err != nil {
			return err
		}
	}

	if len(result.Contributors) > 0 {
		contributors := newTable(w, "Rank", "Contributor", "Commits")
		var data [][]string
		for i, c := range result.Contributors {
			data = append(data, []string{strconv.Itoa(i + 1), c.Login, strconv.Itoa(c.Contributions)})
		}
		if err := renderTable(contributors, data); err != nil {
			return err
		}
	}

	for _, m := range result.Manifests {
		if _, err := fmt.Fprintf(w, "⚠ %s: %s\n", m.Path, m.Hint); err != nil {
			return err
		}
	}
	return nil
}
