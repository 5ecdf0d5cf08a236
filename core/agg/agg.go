// Package agg has the aggregation logic for repository activity data.
// Every function here is pure: malformed or empty input yields an empty,
// well-formed result instead of an error.
package agg

import (
	"github.com/huangsam/repolens/core/algo"
	"github.com/huangsam/repolens/schema"
)

// AggregateChurn sums additions, deletions and changes per filename across
// the given commits and counts one edit per appearance. The first-seen order
// of filenames is kept so later rankings break ties deterministically.
func AggregateChurn(commits []schema.CommitFiles) *schema.ChurnOutput {
	out := &schema.ChurnOutput{
		Files: make(map[string]schema.FileChurnStat),
		Order: []string{},
	}
	for _, c := range commits {
		for _, f := range c.Files {
			stat, seen := out.Files[f.Filename]
			if !seen {
				stat.Filename = f.Filename
				out.Order = append(out.Order, f.Filename)
			}
			stat.Additions += f.Additions
			stat.Deletions += f.Deletions
			stat.Changes += f.Changes
			stat.EditCount++
			out.Files[f.Filename] = stat
		}
	}
	return out
}

// TopFiles returns up to n files with the most changes.
func TopFiles(out *schema.ChurnOutput, n int) []schema.FileChurnStat {
	return algo.RankFiles(out.Ordered(), max(n, 0))
}

// RiskyFiles returns up to n files with the highest risk score.
func RiskyFiles(out *schema.ChurnOutput, n int) []schema.RiskyFile {
	return algo.RankRisky(out.Ordered(), max(n, 0))
}
