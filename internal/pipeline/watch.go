package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"docfill/internal/converter"
)

// Watcher fills documents dropped into an inbox directory and writes the
// renderings next to it.
type Watcher struct {
	engine    *Engine
	inbox     string
	outputDir string
	formats   []converter.Format
	settle    time.Duration
	logger    *zap.Logger
}

// NewWatcher creates a watcher over the inbox directory.
func NewWatcher(engine *Engine, inbox, outputDir string, formats []converter.Format, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(formats) == 0 {
		formats = []converter.Format{converter.FormatDocx, converter.FormatPDF}
	}
	return &Watcher{
		engine:    engine,
		inbox:     inbox,
		outputDir: outputDir,
		formats:   formats,
		settle:    500 * time.Millisecond,
		logger:    logger,
	}
}

// Run blocks processing inbox files until the context is cancelled. New
// files get a short settle delay before processing so partially copied
// documents are not read mid-write.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := fw.Add(w.inbox); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.inbox, err)
	}

	w.logger.Info("watching inbox", zap.String("dir", w.inbox))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			name := strings.ToLower(event.Name)
			if !strings.HasSuffix(name, ".docx") || strings.Contains(name, "_filled") {
				continue
			}

			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				return ctx.Err()
			}

			report := w.engine.processFile(ctx, event.Name, w.outputDir, w.formats)
			if report.Err != nil {
				w.logger.Error("failed to process inbox file",
					zap.String("path", event.Name),
					zap.Error(report.Err))
				continue
			}
			w.logger.Info("inbox file processed",
				zap.String("path", event.Name),
				zap.Int("score", report.Score),
				zap.Strings("outputs", report.Outputs))
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(werr))
		}
	}
}
