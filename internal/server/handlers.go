package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// maxBodyBytes bounds the body of a contents update.
const maxBodyBytes = 10 << 20

// intParam describes a numeric query parameter and the config field it sets.
type intParam struct {
	name  string
	limit int
	dst   func(*contract.Config) *int
}

var intParams = []intParam{
	{"commits", contract.MaxResultLimit, func(c *contract.Config) *int { return &c.ChurnCommits }},
	{"top", contract.MaxResultLimit, func(c *contract.Config) *int { return &c.TopFiles }},
	{"risky", contract.MaxResultLimit, func(c *contract.Config) *int { return &c.RiskyFiles }},
	{"days", contract.MaxHeatmapDays, func(c *contract.Config) *int { return &c.HeatmapDays }},
	{"cap", contract.MaxResultLimit, func(c *contract.Config) *int { return &c.BranchCap }},
	{"page", 100, func(c *contract.Config) *int { return &c.BranchPage }},
	{"authors", contract.MaxResultLimit, func(c *contract.Config) *int { return &c.TopAuthors }},
}

// requestToken returns the token of an "Authorization: Bearer|token <t>" header.
func requestToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, scheme := range []string{"Bearer ", "bearer ", "token "} {
		if after, ok := strings.CutPrefix(header, scheme); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// configFor clones the server config for one request: the repository from
// the path, the token from the Authorization header and the query tunables.
func (s *Server) configFor(r *http.Request) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	if token := requestToken(r); token != "" {
		cfg.Token = token
	}

	if repo := chi.URLParam(r, "repo"); repo != "" {
		ref, err := contract.ParseRepo(chi.URLParam(r, "owner") + "/" + repo)
		if err != nil {
			return nil, InvalidRequest("%v", err)
		}
		cfg.Repo = ref
	}

	q := r.URL.Query()
	for _, p := range intParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > p.limit {
			return nil, InvalidRequest("%s must be an integer between 1 and %d (received %q)", p.name, p.limit, raw)
		}
		*p.dst(cfg) = v
	}
	if b := q.Get("branch"); b != "" {
		cfg.Branch = b
	}
	cfg.Author = q.Get("author")
	cfg.Base = q.Get("base")
	cfg.Head = q.Get("head")
	return cfg, nil
}

// clientFor resolves the per-request config and source client.
func (s *Server) clientFor(w http.ResponseWriter, r *http.Request) (*contract.Config, contract.SourceClient, bool) {
	cfg, err := s.configFor(r)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, false
	}
	client, err := core.NewSourceClient(r.Context(), cfg, s.mgr)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, false
	}
	return cfg, client, true
}

// respond writes result, or the error when err is set.
func (s *Server) respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, result, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	_, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	repos, err := client.ListRepos(r.Context(), chi.URLParam(r, "owner"))
	s.respond(w, repos, err)
}

func (s *Server) handleChurn(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetChurnResult(r.Context(), cfg, client, s.mgr)
	s.respond(w, result, err)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetHeatmapResult(r.Context(), cfg, client)
	s.respond(w, result, err)
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetBranchResult(r.Context(), cfg, client)
	s.respond(w, result, err)
}

func (s *Server) handlePRs(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetPRResult(r.Context(), cfg, client)
	s.respond(w, result, err)
}

// handleReport returns the report even when some sections failed; the
// failures are listed under "errors".
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	report, err := core.GetReport(r.Context(), cfg, client, s.mgr)
	body := struct {
		schema.Report
		Errors []string `json:"errors,omitempty"`
	}{Report: report}
	if err != nil {
		body.Errors = strings.Split(err.Error(), "\n")
	}
	s.writeJSON(w, body, http.StatusOK)
}

// handleOverview fails only when the repository itself cannot be loaded;
// other failed sections are listed under "errors".
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetOverview(r.Context(), cfg, client)
	if errors.Is(err, core.ErrRepositoryUnavailable) {
		s.writeError(w, err)
		return
	}
	body := struct {
		schema.OverviewResult
		Errors []string `json:"errors,omitempty"`
	}{OverviewResult: result}
	if err != nil {
		body.Errors = strings.Split(err.Error(), "\n")
	}
	s.writeJSON(w, body, http.StatusOK)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetCommitDiffResult(r.Context(), cfg, client, chi.URLParam(r, "sha"))
	s.respond(w, result, err)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	if cfg.Base == "" || cfg.Head == "" {
		s.writeError(w, InvalidRequest("base and head query parameters are required"))
		return
	}
	result, err := core.GetCommitDiffResult(r.Context(), cfg, client, "")
	s.respond(w, result, err)
}

func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	result, err := core.GetCommitDiffResult(r.Context(), cfg, client, chi.URLParam(r, "sha"))
	s.respond(w, result.Findings, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	summarizer, err := core.NewSummarizer(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summary, err := core.GetSummary(r.Context(), cfg, client, summarizer, chi.URLParam(r, "sha"))
	s.respond(w, summary, err)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	path := chi.URLParam(r, "*")
	if path == "" {
		s.writeError(w, InvalidRequest("a file path is required"))
		return
	}
	content, err := client.GetFileContent(r.Context(), cfg.Repo, path, r.URL.Query().Get("ref"))
	s.respond(w, content, err)
}

// contentUpdate is the body of a contents PUT.
type contentUpdate struct {
	Content string `json:"content"`
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// handlePutContent commits with the caller's own token only. The server
// token never authorizes a write.
func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request) {
	if requestToken(r) == "" {
		s.writeError(w, Unauthorized("writing contents requires an Authorization header with your own token"))
		return
	}
	cfg, client, ok := s.clientFor(w, r)
	if !ok {
		return
	}
	path := chi.URLParam(r, "*")
	if path == "" {
		s.writeError(w, InvalidRequest("a file path is required"))
		return
	}

	var body contentUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, InvalidRequest("invalid JSON body: %v", err))
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		body.Message = "Update " + path
	}

	commit, err := core.PutFile(r.Context(), cfg, client, schema.FileUpdate{
		Path:    path,
		Message: body.Message,
		Content: body.Content,
		SHA:     body.SHA,
		Branch:  body.Branch,
	})
	s.respond(w, commit, err)
}
