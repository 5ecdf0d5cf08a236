package schema

import "time"

// ChurnRunRecord represents a row from the repolens_churn_runs table.
type ChurnRunRecord struct {
	RunID         int64
	Repo          string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	CommitsSeen   int32
	FilesRecorded int32
	ConfigParams  *string
}

// FileChurnRecord represents a row from the repolens_file_churn table.
type FileChurnRecord struct {
	RunID     int64
	Repo      string
	Filename  string
	Additions int32
	Deletions int32
	Changes   int32
	EditCount int32
	RiskScore float64
	Recorded  time.Time
}
