package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// WritePRs prints pull request counts and the most active authors.
func WritePRs(result schema.PRResult, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "pull requests",
		json:      result,
		csvHeader: []string{"metric", "name", "count"},
		csvRows: func(w *csv.Writer) error {
			return writeRows(w, prCSVRows(result.Aggregate))
		},
		text: func(w io.Writer) error {
			return writePRTables(w, result)
		},
	})
}

// prCSVRows lists the counters first and then one row per ranked author.
func prCSVRows(a schema.PRAggregate) [][]string {
	rows := [][]string{
		{"total", "", strconv.Itoa(a.Total)},
		{"open", "", strconv.Itoa(a.Open)},
		{"closed", "", strconv.Itoa(a.Closed)},
		{"merged", "", strconv.Itoa(a.Merged)},
	}
	for _, ac := range a.TopAuthors {
		rows = append(rows, []string{"author", ac.Author, strconv.Itoa(ac.Count)})
	}
	return rows
}

func writePRTables(w io.Writer, result schema.PRResult) error {
	a := result.Aggregate
	if _, err := fmt.Fprintf(w, "Pull requests of %s\n", result.Repo); err != nil {
		return err
	}
	counts := newTable(w, "Total", "Open", "Closed", "Merged")
	if err := renderTable(counts, [][]string{{
		strconv.Itoa(a.Total),
		strconv.Itoa(a.Open),
		strconv.Itoa(a.Closed),
		strconv.Itoa(a.Merged),
	}}); err != nil {
		return err
	}
	if len(a.TopAuthors) == 0 {
		return nil
	}

	authors := newTable(w, "Rank", "Author", "Pull Requests")
	var data [][]string
	for i, ac := range a.TopAuthors {
		data = append(data, []string{strconv.Itoa(i + 1), ac.Author, strconv.Itoa(ac.Count)})
	}
	return renderTable(authors, data)
}
