// Package algo has the ranking and scoring math shared by the aggregators.
package algo

import (
	"slices"

	"github.com/huangsam/repolens/schema"
)

// RankBy returns a copy of items sorted descending by key. Ties keep their
// input order. A limit of zero or more truncates the result to it; a
// negative limit keeps every item.
func RankBy[T any](items []T, key func(T) float64, limit int) []T {
	ranked := slices.Clone(items)
	if ranked == nil {
		ranked = []T{}
	}
	slices.SortStableFunc(ranked, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		default:
			return 0
		}
	})
	if limit >= 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// RankFiles sorts churn stats by changes in descending order
// and returns the top 'limit' files.
func RankFiles(stats []schema.FileChurnStat, limit int) []schema.FileChurnStat {
	return RankBy(stats, func(s schema.FileChurnStat) float64 {
		return float64(s.Changes)
	}, limit)
}

// RankRisky scores churn stats with RiskScore and returns the top 'limit'
// files in descending order of score.
func RankRisky(stats []schema.FileChurnStat, limit int) []schema.RiskyFile {
	risky := make([]schema.RiskyFile, len(stats))
	for i, s := range stats {
		risky[i] = schema.RiskyFile{FileChurnStat: s, Score: RiskScore(s.Changes, s.EditCount)}
	}
	return RankBy(risky, func(r schema.RiskyFile) float64 {
		return r.Score
	}, limit)
}

// RankBranches sorts branch activity by recent commit count in descending order.
func RankBranches(branches []schema.BranchActivity) []schema.BranchActivity {
	return RankBy(branches, func(b schema.BranchActivity) float64 {
		return float64(b.RecentCommitCount)
	}, -1)
}
