package agg

import (
	"cmp"
	"math"
	"slices"

	"github.com/huangsam/repolens/core/algo"
	"github.com/huangsam/repolens/schema"
)

// LanguageShares orders languages by size, largest first, and fills in the
// share of each in percent with one decimal. Equal sizes sort by name.
func LanguageShares(languages []schema.LanguageShare) []schema.LanguageShare {
	byName := slices.Clone(languages)
	slices.SortFunc(byName, func(a, b schema.LanguageShare) int {
		return cmp.Compare(a.Name, b.Name)
	})
	shares := algo.RankBy(byName, func(l schema.LanguageShare) float64 {
		return float64(l.Bytes)
	}, -1)

	total := 0
	for _, l := range shares {
		total += l.Bytes
	}
	for i := range shares {
		if total > 0 {
			shares[i].Percent = math.Round(float64(shares[i].Bytes)*1000/float64(total)) / 10
		}
	}
	return shares
}

// TopContributors returns up to n contributors with the most contributions.
func TopContributors(contributors []schema.Contributor, n int) []schema.Contributor {
	return algo.RankBy(contributors, func(c schema.Contributor) float64 {
		return float64(c.Contributions)
	}, max(n, 0))
}
