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

// healthBarWidth is the number of cells of a full (100) health bar.
const healthBarWidth = 10

// WriteBranches prints branches ranked by recent activity with their health.
func WriteBranches(result schema.BranchResult, cfg *contract.Config, duration time.Duration) error {
	return render(cfg, renderer{
		name:      "branches",
		json:      result,
		csvHeader: []string{"rank", "branch", "recent_commits", "health", "last_commit"},
		csvRows: func(w *csv.Writer) error {
			for i, b := range result.Rankings.Ranked {
				if err := w.Write([]string{
					strconv.Itoa(i + 1),
					b.Name,
					strconv.Itoa(b.RecentCommitCount),
					strconv.Itoa(result.Rankings.Health[b.Name]),
					b.LastCommitID,
				}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			if err := writeBranchTable(w, result, cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Branches completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
			return err
		},
	})
}

// healthBar draws health (0-100) as a fixed-width bar.
func healthBar(health int) string {
	filled := min(healthBarWidth, max(0, health*healthBarWidth/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", healthBarWidth-filled)
}

func writeBranchTable(w io.Writer, result schema.BranchResult, cfg *contract.Config) error {
	table := newTable(w, "Rank", "Branch", "Recent", "Health", "", "Last Commit")
	nameWidth := getMaxTablePathWidth(cfg, 45)
	var data [][]string
	for i, b := range result.Rankings.Ranked {
		health := result.Rankings.Health[b.Name]
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(b.Name, nameWidth),
			strconv.Itoa(b.RecentCommitCount),
			strconv.Itoa(health),
			healthBar(health),
			shortSHA(b.LastCommitID),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d branches, health relative to %d recent commits\n", len(result.Rankings.Ranked), result.Cap); err != nil {
		return err
	}
	if result.Failed > 0 {
		if _, err := fmt.Fprintf(w, "%d branches could not be loaded and count as inactive\n", result.Failed); err != nil {
			return err
		}
	}
	return nil
}
