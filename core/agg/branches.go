package agg

import (
	"github.com/huangsam/repolens/core/algo"
	"github.com/huangsam/repolens/schema"
)

// RankBranches orders branches by recent commit count and scores their
// health against the reference capacity.
func RankBranches(branches []schema.BranchActivity, capacity int) schema.BranchRanking {
	ranking := schema.BranchRanking{
		Ranked: algo.RankBranches(branches),
		Health: make(map[string]int, len(branches)),
	}
	for _, b := range ranking.Ranked {
		ranking.Health[b.Name] = algo.HealthScore(b.RecentCommitCount, capacity)
	}
	return ranking
}
