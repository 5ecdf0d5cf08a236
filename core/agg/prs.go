package agg

import (
	"github.com/huangsam/repolens/core/algo"
	"github.com/huangsam/repolens/schema"
)

// AggregatePRs counts pull requests by state and ranks their authors.
// Merged pull requests are counted in both Closed and Merged. Pull requests
// without an author are grouped under schema.UnknownAuthor.
func AggregatePRs(prs []schema.PullRequest, topN int) schema.PRAggregate {
	agg := schema.PRAggregate{Total: len(prs)}

	counts := make(map[string]int)
	var order []string
	for _, pr := range prs {
		switch pr.State {
		case schema.OpenState:
			agg.Open++
		case schema.ClosedState:
			agg.Closed++
		}
		if pr.MergedAt != nil {
			agg.Merged++
		}
		author := pr.Author
		if author == "" {
			author = schema.UnknownAuthor
		}
		if _, ok := counts[author]; !ok {
			order = append(order, author)
		}
		counts[author]++
	}

	authors := make([]schema.AuthorCount, len(order))
	for i, name := range order {
		authors[i] = schema.AuthorCount{Author: name, Count: counts[name]}
	}
	agg.TopAuthors = algo.RankBy(authors, func(a schema.AuthorCount) float64 {
		return float64(a.Count)
	}, max(topN, 0))
	return agg
}
