package agg

import (
	"time"

	"github.com/huangsam/repolens/schema"
)

const dayLayout = "2006-01-02"

// BuildHeatmap buckets events into one cell per UTC calendar day of the window
// [ref-windowDays+1, ref], oldest first. Days without events count zero and
// events outside the window are ignored.
func BuildHeatmap(events []time.Time, windowDays int, ref time.Time) []schema.HeatCell {
	if windowDays <= 0 {
		return []schema.HeatCell{}
	}

	end := truncateDay(ref)
	start := end.AddDate(0, 0, -(windowDays - 1))

	cells := make([]schema.HeatCell, windowDays)
	index := make(map[string]int, windowDays)
	for i := range windowDays {
		day := start.AddDate(0, 0, i).Format(dayLayout)
		cells[i] = schema.HeatCell{Date: day}
		index[day] = i
	}

	for _, ev := range events {
		if i, ok := index[ev.UTC().Format(dayLayout)]; ok {
			cells[i].Count++
		}
	}
	return cells
}

// CommitEvents returns the timestamps of commits. When author is set only
// commits by that login (or author name when no login is known) are kept.
func CommitEvents(commits []schema.Commit, author string) []time.Time {
	events := make([]time.Time, 0, len(commits))
	for _, c := range commits {
		if author != "" && c.Login() != author {
			continue
		}
		events = append(events, c.Date)
	}
	return events
}

// HeatTotal sums the counts of all cells.
func HeatTotal(cells []schema.HeatCell) int {
	total := 0
	for _, c := range cells {
		total += c.Count
	}
	return total
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
