package agg

import (
	"math/rand/v2"
	"testing"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name string, add, del, changes int) schema.Patch {
	return schema.Patch{Filename: name, Additions: add, Deletions: del, Changes: changes}
}

func TestAggregateChurn(t *testing.T) {
	commits := []schema.CommitFiles{
		{CommitID: "c1", Files: []schema.Patch{file("a.js", 3, 2, 5)}},
		{CommitID: "c2", Files: []schema.Patch{file("a.js", 2, 1, 3), file("b.js", 1, 0, 1)}},
	}

	out := AggregateChurn(commits)

	require.Contains(t, out.Files, "a.js")
	a := out.Files["a.js"]
	assert.Equal(t, 5, a.Additions)
	assert.Equal(t, 3, a.Deletions)
	assert.Equal(t, 8, a.Changes)
	assert.Equal(t, 2, a.EditCount)
	assert.Equal(t, []string{"a.js", "b.js"}, out.Order)

	risky := RiskyFiles(out, 10)
	require.Len(t, risky, 2)
	assert.Equal(t, "a.js", risky[0].Filename)
	assert.InDelta(t, 16.79, risky[0].Score, 0.01)
}

func TestAggregateChurnEmpty(t *testing.T) {
	out := AggregateChurn(nil)
	assert.Empty(t, out.Files)
	assert.Empty(t, out.Order)
	assert.Empty(t, TopFiles(out, 15))
	assert.Empty(t, RiskyFiles(out, 10))
}

func TestAggregateChurnOrderIndependent(t *testing.T) {
	commits := []schema.CommitFiles{
		{CommitID: "c1", Files: []schema.Patch{file("a", 1, 1, 2), file("b", 4, 0, 4)}},
		{CommitID: "c2", Files: []schema.Patch{file("b", 0, 3, 3)}},
		{CommitID: "c3", Files: []schema.Patch{file("c", 7, 7, 14), file("a", 2, 0, 2)}},
		{CommitID: "c4", Files: []schema.Patch{file("a", 0, 9, 9)}},
	}
	expected := AggregateChurn(commits).Files

	r := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := append([]schema.CommitFiles(nil), commits...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, expected, AggregateChurn(shuffled).Files)
	}
}

func TestTopFiles(t *testing.T) {
	commits := []schema.CommitFiles{
		{CommitID: "c1", Files: []schema.Patch{file("x", 0, 0, 4), file("y", 0, 0, 9), file("z", 0, 0, 4)}},
	}
	out := AggregateChurn(commits)

	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{"all", 15, []string{"y", "x", "z"}},
		{"truncated keeps first seen on tie", 2, []string{"y", "x"}},
		{"zero", 0, []string{}},
		{"negative", -1, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := TopFiles(out, tt.n)
			names := make([]string, len(top))
			for i, s := range top {
				names[i] = s.Filename
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}
