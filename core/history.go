package core

import (
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// churnRun records one churn computation in the run history store.
// A zero value (no store or a failed begin) records nothing.
type churnRun struct {
	store contract.AnalysisStore
	id    int64
}

// beginChurnRun opens a run when run history is configured.
func beginChurnRun(store contract.AnalysisStore, cfg *contract.Config) churnRun {
	if store == nil {
		return churnRun{}
	}
	params := map[string]any{
		"repo":          cfg.Repo.String(),
		"branch":        cfg.Branch,
		"churn_commits": cfg.ChurnCommits,
		"top":           cfg.TopFiles,
		"risky":         cfg.RiskyFiles,
		"workers":       cfg.Workers,
	}
	id, err := store.BeginRun(cfg.Repo.String(), time.Now(), params)
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return churnRun{}
	}
	return churnRun{store: store, id: id}
}

// finish stores every file of the run and closes it.
func (r churnRun) finish(repo string, files []schema.RiskyFile, commitsSeen int) {
	if r.store == nil || r.id <= 0 {
		return
	}
	recorded := time.Now()
	saved := 0
	for _, f := range files {
		if err := r.store.RecordFileChurn(r.id, repo, f, recorded); err != nil {
			contract.LogWarn("Failed to record file churn", err)
			continue
		}
		saved++
	}
	if err := r.store.EndRun(r.id, time.Now(), commitsSeen, saved); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
}
