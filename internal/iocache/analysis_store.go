package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// Table names for run history.
const (
	churnRunsTable = "repolens_churn_runs"
	fileChurnTable = "repolens_file_churn"
)

// AnalysisStoreImpl records churn runs and the per-file rows they produced.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore opens the backend and makes sure the history tables exist.
// The none backend returns a store that records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{churnRunsTable, getCreateChurnRunsQuery(backend)},
		{fileChurnTable, getCreateFileChurnQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

func getCreateChurnRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(churnRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repo VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				commits_seen INT NOT NULL DEFAULT 0,
				files_recorded INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				repo TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				commits_seen INT NOT NULL DEFAULT 0,
				files_recorded INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				commits_seen INTEGER NOT NULL DEFAULT 0,
				files_recorded INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

func getCreateFileChurnQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(fileChurnTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo VARCHAR(255) NOT NULL,
				filename VARCHAR(512) NOT NULL,
				additions INT NOT NULL,
				deletions INT NOT NULL,
				changes INT NOT NULL,
				edit_count INT NOT NULL,
				risk_score DOUBLE NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, filename)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo TEXT NOT NULL,
				filename TEXT NOT NULL,
				additions INT NOT NULL,
				deletions INT NOT NULL,
				changes INT NOT NULL,
				edit_count INT NOT NULL,
				risk_score DOUBLE PRECISION NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, filename)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				repo TEXT NOT NULL,
				filename TEXT NOT NULL,
				additions INTEGER NOT NULL,
				deletions INTEGER NOT NULL,
				changes INTEGER NOT NULL,
				edit_count INTEGER NOT NULL,
				risk_score REAL NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, filename)
			);
		`, quoted)
	}
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (as *AnalysisStoreImpl) rebind(query string) string {
	if as.backend != schema.PostgreSQLBackend {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// BeginRun creates a churn run and returns its id.
func (as *AnalysisStoreImpl) BeginRun(repo string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(churnRunsTable, as.backend)
	var runID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (repo, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = as.db.QueryRow(query, repo, startTime, string(configJSON)).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (repo, start_time, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = as.db.Exec(query, repo, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert churn run: %w", err)
	}
	return runID, nil
}

// EndRun stores the completion time, duration and counters of a run.
func (as *AnalysisStoreImpl) EndRun(runID int64, endTime time.Time, commitsSeen, filesRecorded int) error {
	if as.db == nil {
		return nil
	}

	quoted := quoteTableName(churnRunsTable, as.backend)
	row := as.db.QueryRow(as.rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoted)), runID)
	startTime, err := as.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, commits_seen = ?, files_recorded = ? WHERE run_id = ?`, quoted)
	durationMs := endTime.Sub(startTime).Milliseconds()
	if _, err := as.db.Exec(as.rebind(update), formatTime(endTime, as.backend), durationMs, commitsSeen, filesRecorded, runID); err != nil {
		return fmt.Errorf("failed to update churn run: %w", err)
	}
	return nil
}

// RecordFileChurn stores the churn stat and risk score of one file.
func (as *AnalysisStoreImpl) RecordFileChurn(runID int64, repo string, file schema.RiskyFile, recorded time.Time) error {
	if as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, repo, filename, additions, deletions, changes, edit_count, risk_score, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(fileChurnTable, as.backend))
	_, err := as.db.Exec(as.rebind(query),
		runID, repo, file.Filename, file.Additions, file.Deletions, file.Changes, file.EditCount, file.Score,
		formatTime(recorded, as.backend))
	if err != nil {
		return fmt.Errorf("failed to insert file churn for %s: %w", file.Filename, err)
	}
	return nil
}

// scanTime reads a single timestamp column in the backend's storage format.
func (as *AnalysisStoreImpl) scanTime(row interface{ Scan(...any) error }) (time.Time, error) {
	if as.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus reports run counts, run times and the row count of each table.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:   string(as.backend),
		Connected: as.db != nil,
		TableRows: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(churnRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := as.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if status.LastRunTime, err = as.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if status.OldestRunTime, err = as.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(files_recorded), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalFilesSaved); err != nil {
			return status, fmt.Errorf("failed to get total files saved: %w", err)
		}
	}

	for _, table := range []string{churnRunsTable, fileChurnTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableRows[table] = count
	}

	return status, nil
}

// GetAllRuns returns every recorded run ordered by id.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.ChurnRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, start_time, end_time, run_duration_ms, commits_seen, files_recorded, config_params
		FROM %s ORDER BY run_id`, quoteTableName(churnRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query churn runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ChurnRunRecord
	for rows.Next() {
		var record schema.ChurnRunRecord
		if as.backend == schema.SQLiteBackend {
			var start string
			var end *string
			if err := rows.Scan(&record.RunID, &record.Repo, &start, &end, &record.RunDurationMs,
				&record.CommitsSeen, &record.FilesRecorded, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan churn run: %w", err)
			}
			if record.StartTime, err = parseTime(start); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if end != nil {
				endTime, err := parseTime(*end)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		} else if err := rows.Scan(&record.RunID, &record.Repo, &record.StartTime, &record.EndTime, &record.RunDurationMs,
			&record.CommitsSeen, &record.FilesRecorded, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan churn run: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating churn runs: %w", err)
	}
	return results, nil
}

// GetAllFileChurn returns every recorded file row ordered by run and filename.
func (as *AnalysisStoreImpl) GetAllFileChurn() ([]schema.FileChurnRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, filename, additions, deletions, changes, edit_count, risk_score, recorded_at
		FROM %s ORDER BY run_id, filename`, quoteTableName(fileChurnTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file churn: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileChurnRecord
	for rows.Next() {
		var record schema.FileChurnRecord
		dest := []any{&record.RunID, &record.Repo, &record.Filename, &record.Additions, &record.Deletions,
			&record.Changes, &record.EditCount, &record.RiskScore}
		if as.backend == schema.SQLiteBackend {
			var recorded string
			if err := rows.Scan(append(dest, &recorded)...); err != nil {
				return nil, fmt.Errorf("failed to scan file churn: %w", err)
			}
			if record.Recorded, err = parseTime(recorded); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		} else if err := rows.Scan(append(dest, &record.Recorded)...); err != nil {
			return nil, fmt.Errorf("failed to scan file churn: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file churn: %w", err)
	}
	return results, nil
}
