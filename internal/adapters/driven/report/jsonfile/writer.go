// Package jsonfile writes validation reports as indented JSON files.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.ReportWriter = (*Writer)(nil)

// TimestampLayout names report files, e.g. twinsync_report_20240102_150405.json.
const TimestampLayout = "20060102_150405"

// Writer writes reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir. Empty means the working directory.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// FileName returns the report file name for the report's timestamp.
func FileName(report domain.ValidationReport) string {
	return "twinsync_report_" + report.Timestamp.UTC().Format(TimestampLayout) + ".json"
}

// Write encodes the report and returns the file path.
func (w *Writer) Write(ctx context.Context, report domain.ValidationReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := filepath.Join(w.dir, FileName(report))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	logger.Info("Report written to %s", path)
	return path, nil
}
