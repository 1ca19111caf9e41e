package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Exporter streams receipts to a writer.
type Exporter interface {
	Export(ctx context.Context, writer io.Writer, format, runID string) (int, error)
}

type Service struct {
	source Exporter
	now    func() time.Time
}

func NewService(source Exporter) *Service {
	return &Service{source: source, now: time.Now}
}

// ValidateFormat accepts the two export encodings.
func ValidateFormat(format string) error {
	if format != "bson" && format != "json" {
		return fmt.Errorf("invalid format: %s. Use 'bson' or 'json'", format)
	}
	return nil
}

// ExportReceipts writes the receipt history, limited to runID when set, to a
// timestamped file in outputDir and returns its path and document count.
func (s *Service) ExportReceipts(ctx context.Context, name, outputDir, format, runID string) (string, int, error) {
	if err := ValidateFormat(format); err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := s.now().Format("20060102_150405")
	filename := fmt.Sprintf("receipts_%s_%s.%s", name, timestamp, format)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	count, err := s.source.Export(ctx, file, format, runID)
	if err != nil {
		file.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("export failed: %w", err)
	}

	return path, count, nil
}
