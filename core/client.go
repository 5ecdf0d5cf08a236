package core

import (
	"context"
	"errors"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/github"
	"github.com/huangsam/repolens/internal/summarize"
)

// ErrSummaryDisabled is returned when a summary is requested without an API key.
var ErrSummaryDisabled = errors.New("commit summaries are disabled. Set --openai-key or REPOLENS_OPENAI_KEY")

// NewSourceClient builds the API client for cfg. GET responses go through the
// response cache of mgr when one is configured.
// It is a variable so tests can swap in a mock.
var NewSourceClient = func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (contract.SourceClient, error) {
	var opts []github.Option
	if store := responseStoreOf(mgr); store != nil {
		opts = append(opts, github.WithCache(store, cfg.CacheTTL))
	}
	client, err := github.NewClient(ctx, cfg.Token, cfg.APIURL, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewSummarizer builds the chat model client for cfg.
// It is a variable so tests can swap in a mock.
var NewSummarizer = func(cfg *contract.Config) (contract.Summarizer, error) {
	if cfg.OpenAIKey == "" {
		return nil, ErrSummaryDisabled
	}
	return summarize.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIURL)
}

func responseStoreOf(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetResponseStore()
}

func analysisStoreOf(mgr contract.CacheManager) contract.AnalysisStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAnalysisStore()
}
