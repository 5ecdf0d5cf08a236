//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRepolensWithMySQL runs the CLI with MySQL response cache and run history.
func TestRepolensWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repolens",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/repolens?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestRepolensWithPostgres runs the CLI with PostgreSQL response cache and run history.
func TestRepolensWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario migrates the run history, records one churn run through
// the CLI and reads it back through the store.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	srv := fakeGitHub(t)
	env := map[string]string{
		"REPOLENS_CACHE_BACKEND":       backend,
		"REPOLENS_CACHE_DB_CONNECT":    connStr,
		"REPOLENS_ANALYSIS_BACKEND":    backend,
		"REPOLENS_ANALYSIS_DB_CONNECT": connStr,
	}

	stdout, err := runRepolens(t, env, "analysis", "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version")

	_, err = runRepolens(t, env, "cache", "clear")
	require.NoError(t, err)

	stdout, err = runRepolens(t, env, "churn", "acme/widgets", "--api-url", srv.URL, "--output", "json")
	require.NoError(t, err)
	assert.Equal(t, 2, decodeChurn(t, stdout).TotalFiles)

	stdout, err = runRepolens(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Connected: true")

	stdout, err = runRepolens(t, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Runs: 1")

	store, err := iocache.NewAnalysisStore(schema.DatabaseBackend(backend), connStr)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "acme/widgets", runs[0].Repo)

	files, err := store.GetAllFileChurn()
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = runRepolens(t, env, "analysis", "clear")
	require.NoError(t, err)
}
