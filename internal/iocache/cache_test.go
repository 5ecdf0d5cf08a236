package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals makes the package level manager usable again in a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitCaching(t *testing.T) {
	t.Run("both stores", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		err := InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetResponseStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		_, err = os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err)
	})

	t.Run("empty backends leave stores nil", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitCaching("", "", "", ""))
		assert.Nil(t, Manager.GetResponseStore())
		assert.Nil(t, Manager.GetAnalysisStore())
	})

	t.Run("idempotent", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		for range 3 {
			assert.NoError(t, InitCaching(schema.SQLiteBackend, path, "", ""))
		}
		CloseCaching()
		CloseCaching()
	})

	t.Run("bad backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitCaching("oracle", "", "", "")
		assert.ErrorContains(t, err, "unsupported backend")
	})

	t.Run("bad analysis backend closes response store", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		err := InitCaching(schema.SQLiteBackend, path, "oracle", "")
		assert.ErrorContains(t, err, "failed to initialize analysis store")
		assert.Nil(t, Manager.GetResponseStore())
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"plain", "response_cache", false},
		{"leading underscore", "_cache", false},
		{"digits", "cache2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"dash", "response-cache", true},
		{"injection", "cache; DROP TABLE x", true},
		{"quote", `cache"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"response_cache"`},
		{schema.MySQLBackend, "`response_cache`"},
		{schema.PostgreSQLBackend, `"response_cache"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("response_cache", tt.backend))
		})
	}
}

func TestQueriesPerBackend(t *testing.T) {
	tests := []struct {
		backend     schema.DatabaseBackend
		placeholder string
		upsert      string
		create      string
	}{
		{schema.SQLiteBackend, "?", "INSERT OR REPLACE", "cache_value BLOB"},
		{schema.MySQLBackend, "?", "ON DUPLICATE KEY UPDATE", "cache_value LONGBLOB"},
		{schema.PostgreSQLBackend, "$1", "ON CONFLICT (cache_key)", "cache_value BYTEA"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			ps := &CacheStoreImpl{tableName: responseTable, backend: tt.backend}
			assert.Equal(t, tt.placeholder, ps.placeholder())
			assert.Contains(t, ps.upsertQuery(), tt.upsert)
			assert.Contains(t, getCreateTableQuery(responseTable, tt.backend), tt.create)
		})
	}
}

func newSQLiteCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(responseTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestSQLiteCacheStore(t *testing.T) {
	store := newSQLiteCacheStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k", []byte(`{"a":1}`), 1, 100))
	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Overwrite keeps a single row.
	require.NoError(t, store.Set("k", []byte(`{"a":2}`), 2, 200))
	value, version, ts, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalEntries)
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		store := newSQLiteCacheStore(t)
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Zero(t, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
	})

	t.Run("with entries", func(t *testing.T) {
		store := newSQLiteCacheStore(t)
		require.NoError(t, store.Set("a", []byte("1"), 1, 1000))
		require.NoError(t, store.Set("b", []byte("2"), 1, 3000))
		require.NoError(t, store.Set("c", []byte("3"), 1, 2000))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(3000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Positive(t, status.TableSizeBytes)
	})

	t.Run("none backend", func(t *testing.T) {
		store, err := NewCacheStore(responseTable, schema.NoneBackend, "")
		require.NoError(t, err)
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
	})
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore(responseTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore(responseTable, "oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(responseTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db")))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.ErrorContains(t, ClearCache("oracle", ""), "unsupported backend")
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	response := &MockCacheStore{}
	analysis := &MockAnalysisStore{}
	mgr := NewCacheStoreManager(response, analysis)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.Same(t, response, mgr.GetResponseStore())
			assert.Same(t, analysis, mgr.GetAnalysisStore())
		})
	}
	wg.Wait()
}
