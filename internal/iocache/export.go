package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/parquet"
)

// ExportAnalysis writes the run history of store to two Parquet files
// named outputFile.churn_runs.parquet and outputFile.file_churn.parquet.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve churn runs: %w", err)
	}
	files, err := store.GetAllFileChurn()
	if err != nil {
		return fmt.Errorf("failed to retrieve file churn: %w", err)
	}

	runsFile := outputFile + ".churn_runs.parquet"
	if err := parquet.WriteChurnRunsParquet(parquet.ConvertChurnRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write churn runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d churn runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".file_churn.parquet"
	if err := parquet.WriteFileChurnParquet(parquet.ConvertFileChurnRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write file churn: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file churn rows to: %s\n", len(files), filesFile)

	return nil
}
