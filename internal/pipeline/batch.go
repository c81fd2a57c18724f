package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docfill/internal/converter"
)

// BatchReport summarizes one file processed in a batch run.
type BatchReport struct {
	Path    string
	Score   int
	Outputs []string
	Err     error
}

// RunBatch fills every .docx in inputDir and writes the renderings to
// outputDir. Per-file failures are recorded in the report and do not stop
// the run; already rendered files are skipped.
func (e *Engine) RunBatch(ctx context.Context, inputDir, outputDir string, formats []converter.Format) ([]BatchReport, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if len(formats) == 0 {
		formats = []converter.Format{converter.FormatDocx, converter.FormatPDF}
	}

	var reports []BatchReport
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !strings.HasSuffix(name, ".docx") {
			continue
		}
		if strings.Contains(name, "_filled") || strings.Contains(name, "_fallback") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, e.processFile(ctx, filepath.Join(inputDir, entry.Name()), outputDir, formats))
	}
	return reports, nil
}

func (e *Engine) processFile(ctx context.Context, path, outputDir string, formats []converter.Format) BatchReport {
	report := BatchReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return report
	}

	res, quality, err := e.FillDocument(ctx, uuid.NewString(), data, nil)
	if err != nil {
		report.Err = err
		return report
	}
	report.Score = quality.Score

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, format := range formats {
		outcome, err := e.chain.Convert(ctx, res.DocumentBytes, format)
		if err != nil {
			report.Err = err
			return report
		}

		name := base + "_filled." + outcome.Format.Extension()
		if outcome.Degraded {
			name = base + "_fallback.txt"
		}
		target := filepath.Join(outputDir, name)
		if err := writeFileAtomic(target, outcome.Bytes); err != nil {
			report.Err = err
			return report
		}
		report.Outputs = append(report.Outputs, target)
	}

	e.logger.Info("batch file processed",
		zap.String("path", path),
		zap.Int("score", report.Score),
		zap.Strings("outputs", report.Outputs))
	return report
}

// writeFileAtomic writes through a temp file and rename so readers never
// observe a partially written output.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docfill-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
