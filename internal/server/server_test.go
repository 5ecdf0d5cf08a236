package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testRepo = schema.RepoRef{Owner: "octo", Name: "hello"}

func baseConfig() *contract.Config {
	return &contract.Config{
		Token:         "server-token",
		Workers:       1,
		ChurnCommits:  schema.DefaultChurnCommits,
		TopFiles:      schema.DefaultTopFiles,
		RiskyFiles:    schema.DefaultRiskyFiles,
		HeatmapDays:   schema.DefaultHeatmapDays,
		BranchCap:     schema.DefaultBranchCap,
		BranchPage:    schema.DefaultBranchPage,
		TopAuthors:    schema.DefaultTopAuthors,
		CommitListing: schema.DefaultCommitListing,
	}
}

// newTestServer starts the API with client standing in for the source API.
// The returned function lists the config of every request so far.
func newTestServer(t *testing.T, client contract.SourceClient) (*httptest.Server, func() []*contract.Config) {
	var (
		mu   sync.Mutex
		seen []*contract.Config
	)
	prev := core.NewSourceClient
	core.NewSourceClient = func(_ context.Context, cfg *contract.Config, _ contract.CacheManager) (contract.SourceClient, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cfg)
		return client, nil
	}
	t.Cleanup(func() { core.NewSourceClient = prev })

	srv := httptest.NewServer(New(baseConfig(), nil, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv, func() []*contract.Config {
		mu.Lock()
		defer mu.Unlock()
		return append([]*contract.Config(nil), seen...)
	}
}

func doRequest(t *testing.T, method, url string, body io.Reader, header http.Header) (*http.Response, []byte) {
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &contract.MockSourceClient{})

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRequestIDIsReused(t *testing.T) {
	srv, _ := newTestServer(t, &contract.MockSourceClient{})

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/health", nil, http.Header{requestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestInvalidNumericParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"not a number", "days=abc"},
		{"zero", "top=0"},
		{"negative", "risky=-1"},
		{"above limit", "page=101"},
		{"float", "commits=1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &contract.MockSourceClient{})

			resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/churn?"+tt.query, nil, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var appErr AppError
			require.NoError(t, json.Unmarshal(body, &appErr))
			assert.Equal(t, ErrCodeInvalidRequest, appErr.Code)
			assert.NotEmpty(t, appErr.Message)
		})
	}
}

func TestInvalidRepo(t *testing.T) {
	srv, _ := newTestServer(t, &contract.MockSourceClient{})

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/bad%20name/prs", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenFromHeader(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{}, nil)
	srv, seen := newTestServer(t, client)

	doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/prs", nil, http.Header{"Authorization": {"Bearer user-token"}})
	doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/prs", nil, nil)

	configs := seen()
	require.Len(t, configs, 2)
	assert.Equal(t, "user-token", configs[0].Token)
	assert.Equal(t, "server-token", configs[1].Token)
}

func TestHeatmapQuery(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.MatchedBy(func(q contract.CommitQuery) bool {
		return q.Author == "alice" && q.SHA == "dev"
	})).Return([]schema.Commit{}, nil)
	srv, _ := newTestServer(t, client)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/heatmap?days=14&author=alice&branch=dev", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var result schema.HeatmapResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Len(t, result.Cells, 14)
	assert.Equal(t, "alice", result.Author)
}

func TestUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		upstream int
		status   int
		code     ErrorCode
	}{
		{http.StatusUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusForbidden, http.StatusForbidden, ErrCodeForbidden},
		{http.StatusNotFound, http.StatusNotFound, ErrCodeNotFound},
		{http.StatusUnprocessableEntity, http.StatusUnprocessableEntity, ErrCodeUnprocessable},
		{http.StatusInternalServerError, http.StatusBadGateway, ErrCodeUpstreamError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.upstream), func(t *testing.T) {
			client := &contract.MockSourceClient{}
			client.On("ListBranches", mock.Anything, testRepo).
				Return(nil, &gh.ErrorResponse{Response: &http.Response{StatusCode: tt.upstream}, Message: "nope"})
			srv, _ := newTestServer(t, client)

			resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/branches", nil, nil)
			assert.Equal(t, tt.status, resp.StatusCode)

			var appErr AppError
			require.NoError(t, json.Unmarshal(body, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
			assert.Contains(t, appErr.Message, "nope")
		})
	}
}

func TestFromError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, fromError(errors.New("boom")).StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, fromError(core.ErrSummaryDisabled).StatusCode)
	assert.Equal(t, http.StatusBadRequest, fromError(fmt.Errorf("wrapped: %w", InvalidRequest("x"))).StatusCode)
}

func TestSummaryDisabled(t *testing.T) {
	srv, _ := newTestServer(t, &contract.MockSourceClient{})

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/commits/abc/summary", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSecrets(t *testing.T) {
	leak := "@@ -0,0 +1 @@\n+token: abc"
	client := &contract.MockSourceClient{}
	client.On("GetCommit", mock.Anything, testRepo, "abc").Return(schema.CommitDetail{
		Commit: schema.Commit{SHA: "abc"},
		Files:  []schema.Patch{{Filename: "ci.yml", PatchText: &leak}},
	}, nil)
	srv, _ := newTestServer(t, client)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/commits/abc/secrets", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"filename":"ci.yml","match":"token"}]`, string(body))
}

func TestCompareRequiresRefs(t *testing.T) {
	srv, _ := newTestServer(t, &contract.MockSourceClient{})

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/compare?base=main", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportPartialFailure(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return([]schema.Commit{}, nil)
	client.On("ListBranches", mock.Anything, testRepo).Return([]schema.Branch{}, nil)
	client.On("ListPullRequests", mock.Anything, testRepo).Return(nil, errors.New("prs down"))
	client.On("GetRepository", mock.Anything, testRepo).Return(schema.Repository{}, errors.New("repo down"))
	srv, _ := newTestServer(t, client)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/report", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "octo/hello", decoded["repo"])
	assert.Contains(t, fmt.Sprint(decoded["errors"]), "prs down")
	assert.Contains(t, fmt.Sprint(decoded["errors"]), "repo down")
}

func overviewClient(repoErr error) *contract.MockSourceClient {
	notFound := &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}, Message: "Not Found"}
	client := &contract.MockSourceClient{}
	client.On("GetRepository", mock.Anything, testRepo).Return(schema.Repository{DefaultBranch: "main", Stars: 3}, repoErr)
	client.On("ListLanguages", mock.Anything, testRepo).Return([]schema.LanguageShare{{Name: "Go", Bytes: 10}}, nil)
	client.On("ListContributors", mock.Anything, testRepo).Return(nil, errors.New("contributors down"))
	client.On("GetLicense", mock.Anything, testRepo).Return(&schema.License{Key: "mit", Name: "MIT License", SPDXID: "MIT"}, nil)
	client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return([]schema.Commit{{SHA: "c1"}}, nil)
	client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{}, nil)
	client.On("GetFileContent", mock.Anything, testRepo, "requirements.txt", "").Return(schema.FileContent{Path: "requirements.txt"}, nil)
	client.On("GetFileContent", mock.Anything, testRepo, mock.Anything, "").Return(schema.FileContent{}, notFound)
	return client
}

func TestOverview(t *testing.T) {
	t.Run("partial sections", func(t *testing.T) {
		srv, _ := newTestServer(t, overviewClient(nil))

		resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/overview", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var decoded struct {
			schema.OverviewResult
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, "octo/hello", decoded.Repo)
		assert.Equal(t, 3, decoded.Stars)
		assert.Equal(t, "MIT", decoded.License.SPDXID)
		assert.Equal(t, 1, decoded.Totals.Commits)
		assert.Equal(t, []schema.ManifestHint{{Path: "requirements.txt", Hint: "Found manifest. Consider running a dependency scan."}}, decoded.Manifests)
		assert.Equal(t, []string{"contributors: contributors down"}, decoded.Errors)
	})

	t.Run("missing repository", func(t *testing.T) {
		notFound := &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}, Message: "Not Found"}
		srv, _ := newTestServer(t, overviewClient(notFound))

		resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/overview", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var appErr AppError
		require.NoError(t, json.Unmarshal(body, &appErr))
		assert.Equal(t, ErrCodeNotFound, appErr.Code)
	})
}

func TestContents(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("GetFileContent", mock.Anything, testRepo, "docs/README.md", "v1").
		Return(schema.FileContent{Path: "docs/README.md", SHA: "blob1", Content: "hi"}, nil).Once()
	client.On("GetFileContent", mock.Anything, testRepo, "docs/README.md", "").
		Return(schema.FileContent{Path: "docs/README.md", SHA: "blob1"}, nil).Once()
	client.On("PutFileContent", mock.Anything, testRepo, schema.FileUpdate{
		Path:    "docs/README.md",
		Message: "Update docs/README.md",
		Content: "new",
		SHA:     "blob1",
	}).Return(schema.FileCommit{Path: "docs/README.md", CommitSHA: "c1"}, nil)
	srv, _ := newTestServer(t, client)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/repos/octo/hello/contents/docs/README.md?ref=v1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"content":"hi"`)

	auth := http.Header{"Content-Type": {"application/json"}, "Authorization": {"Bearer user-token"}}
	resp, body = doRequest(t, http.MethodPut, srv.URL+"/api/repos/octo/hello/contents/docs/README.md",
		strings.NewReader(`{"content":"new"}`), auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"commit_sha":"c1"`)

	resp, _ = doRequest(t, http.MethodPut, srv.URL+"/api/repos/octo/hello/contents/docs/README.md", strings.NewReader("{"), auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	client.AssertExpectations(t)
}

func TestAnonymousWriteIsRejected(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
	}{
		{"no header", nil},
		{"empty bearer", http.Header{"Authorization": {"Bearer "}}},
		{"basic auth", http.Header{"Authorization": {"Basic dXNlcjpwYXNz"}}},
		{"cross origin", http.Header{"Origin": {"https://evil.example"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &contract.MockSourceClient{}
			srv, seen := newTestServer(t, client)

			resp, body := doRequest(t, http.MethodPut, srv.URL+"/api/repos/octo/hello/contents/README.md",
				strings.NewReader(`{"content":"pwned"}`), tt.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var appErr AppError
			require.NoError(t, json.Unmarshal(body, &appErr))
			assert.Equal(t, ErrCodeUnauthorized, appErr.Code)
			assert.Empty(t, seen(), "no client is built with the server token")
			client.AssertNotCalled(t, "PutFileContent", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"default rejects remote pages", nil, "https://evil.example", ""},
		{"default allows localhost dev servers", nil, "http://localhost:5173", "http://localhost:5173"},
		{"default allows loopback", nil, "http://127.0.0.1:3000", "http://127.0.0.1:3000"},
		{"configured origin", []string{"https://lens.example.com"}, "https://lens.example.com", "https://lens.example.com"},
		{"configured list excludes localhost", []string{"https://lens.example.com"}, "http://localhost:5173", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.AllowedOrigins = tt.allowed
			srv := httptest.NewServer(New(cfg, nil, zerolog.Nop()).Router())
			defer srv.Close()

			resp, _ := doRequest(t, http.MethodOptions, srv.URL+"/api/repos/octo/hello/contents/README.md", nil, http.Header{
				"Origin":                        {tt.origin},
				"Access-Control-Request-Method": {http.MethodPut},
			})
			assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestToken(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"token abc", "abc"},
		{"Basic abc", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", tt.header)
		assert.Equal(t, tt.expected, requestToken(r), tt.header)
	}
}
