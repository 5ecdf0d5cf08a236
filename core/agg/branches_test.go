package agg

import (
	"testing"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
)

func TestRankBranches(t *testing.T) {
	branches := []schema.BranchActivity{
		{Name: "feature", RecentCommitCount: 5, LastCommitID: "f"},
		{Name: "main", RecentCommitCount: 30, LastCommitID: "m"},
		{Name: "dead", RecentCommitCount: 0},
		{Name: "dev", RecentCommitCount: 15},
	}

	ranking := RankBranches(branches, 30)

	names := make([]string, len(ranking.Ranked))
	for i, b := range ranking.Ranked {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"main", "dev", "feature", "dead"}, names)
	assert.Equal(t, map[string]int{"main": 100, "dev": 50, "feature": 16, "dead": 0}, ranking.Health)
}

func TestRankBranchesCap(t *testing.T) {
	branches := []schema.BranchActivity{{Name: "main", RecentCommitCount: 10}}

	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{"reference cap", 30, 33},
		{"small cap saturates", 5, 100},
		{"zero cap", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RankBranches(branches, tt.capacity).Health["main"])
		})
	}
}

func TestRankBranchesEmpty(t *testing.T) {
	ranking := RankBranches(nil, 30)
	assert.Empty(t, ranking.Ranked)
	assert.NotNil(t, ranking.Health)
}
