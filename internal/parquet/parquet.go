// Package parquet exports repolens run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/parquet-go/parquet-go"
)

// ChurnRun is one recorded churn run.
// It maps to the repolens_churn_runs table.
type ChurnRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	Repo          string     `parquet:"repo,snappy,dict"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	CommitsSeen   int32      `parquet:"commits_seen,snappy"`
	FilesRecorded int32      `parquet:"files_recorded,snappy"`

	// ConfigParams is the JSON-encoded configuration of the run
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileChurn is the churn stat and risk score of one file in one run.
// It maps to the repolens_file_churn table.
type FileChurn struct {
	RunID     int64     `parquet:"run_id,snappy"`
	Repo      string    `parquet:"repo,snappy,dict"`
	Filename  string    `parquet:"filename,snappy"`
	Additions int32     `parquet:"additions,snappy"`
	Deletions int32     `parquet:"deletions,snappy"`
	Changes   int32     `parquet:"changes,snappy"`
	EditCount int32     `parquet:"edit_count,snappy"`
	RiskScore float64   `parquet:"risk_score,snappy"`
	Recorded  time.Time `parquet:"recorded_at,snappy"`
}

// WriteChurnRunsParquet writes churn runs to a Parquet file.
func WriteChurnRunsParquet(data []ChurnRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileChurnParquet writes file churn rows to a Parquet file.
func WriteFileChurnParquet(data []FileChurn, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using the schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertChurnRunRecords converts store records for export.
func ConvertChurnRunRecords(records []schema.ChurnRunRecord) []ChurnRun {
	result := make([]ChurnRun, len(records))
	for i, record := range records {
		result[i] = ChurnRun{
			RunID:         record.RunID,
			Repo:          record.Repo,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			CommitsSeen:   record.CommitsSeen,
			FilesRecorded: record.FilesRecorded,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFileChurnRecords converts store records for export.
func ConvertFileChurnRecords(records []schema.FileChurnRecord) []FileChurn {
	result := make([]FileChurn, len(records))
	for i, record := range records {
		result[i] = FileChurn{
			RunID:     record.RunID,
			Repo:      record.Repo,
			Filename:  record.Filename,
			Additions: record.Additions,
			Deletions: record.Deletions,
			Changes:   record.Changes,
			EditCount: record.EditCount,
			RiskScore: record.RiskScore,
			Recorded:  record.Recorded,
		}
	}
	return result
}
