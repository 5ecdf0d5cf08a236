package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// heatGlyphs are the intensity levels of the calendar grid, lowest first.
var heatGlyphs = []string{"·", "░", "▒", "▓", "█"}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WriteHeatmap prints daily commit counts as a calendar grid.
func WriteHeatmap(result schema.HeatmapResult, cfg *contract.Config) error {
	return render(cfg, renderer{
		name:      "heatmap",
		json:      result,
		csvHeader: []string{"date", "count"},
		csvRows: func(w *csv.Writer) error {
			for _, c := range result.Cells {
				if err := w.Write([]string{c.Date, strconv.Itoa(c.Count)}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			return writeHeatmapGrid(w, result)
		},
	})
}

// heatLevel maps a count onto the glyph scale relative to the busiest day.
func heatLevel(count, highest int) int {
	if count <= 0 || highest <= 0 {
		return 0
	}
	last := len(heatGlyphs) - 1
	return max(1, min(last, (count*last+highest-1)/highest))
}

// writeHeatmapGrid lays the cells out in weekday rows and week columns,
// oldest week on the left.
func writeHeatmapGrid(w io.Writer, result schema.HeatmapResult) error {
	who := result.Repo
	if result.Author != "" {
		who = result.Author + " in " + result.Repo
	}
	if _, err := fmt.Fprintf(w, "%d commits by %s in the last %d days\n", result.Total, who, result.Days); err != nil {
		return err
	}
	if len(result.Cells) == 0 {
		return nil
	}

	highest := 0
	for _, c := range result.Cells {
		highest = max(highest, c.Count)
	}

	first, err := time.Parse(time.DateOnly, result.Cells[0].Date)
	if err != nil {
		return fmt.Errorf("invalid heatmap date %q: %w", result.Cells[0].Date, err)
	}
	offset := int(first.Weekday())
	weeks := (offset + len(result.Cells) + 6) / 7

	grid := make([][]string, 7)
	for day := range grid {
		grid[day] = make([]string, weeks)
		for week := range grid[day] {
			grid[day][week] = " "
		}
	}
	for i, c := range result.Cells {
		pos := offset + i
		grid[pos%7][pos/7] = heatGlyphs[heatLevel(c.Count, highest)]
	}

	for day, row := range grid {
		if _, err := fmt.Fprintf(w, "%s %s\n", weekdayNames[day], strings.Join(row, "")); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "Less %s More (busiest day: %d)\n", strings.Join(heatGlyphs, ""), highest)
	return err
}
