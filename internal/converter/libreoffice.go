package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const defaultConvertTimeout = 30 * time.Second

// writeWorkFile stages the document in a private work directory for an
// external converter run.
func writeWorkFile(document []byte) (dir, input string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "docfill-convert-")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	input = filepath.Join(dir, "input.docx")
	if err := os.WriteFile(input, document, 0644); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("failed to stage document: %w", err)
	}
	return dir, input, cleanup, nil
}

// LibreOfficeBackend converts documents through a headless office suite.
type LibreOfficeBackend struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewLibreOffice creates the office-suite backend. An empty binary falls
// back to soffice on PATH.
func NewLibreOffice(binary string, timeout time.Duration, logger *zap.Logger) *LibreOfficeBackend {
	if binary == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = defaultConvertTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibreOfficeBackend{binary: binary, timeout: timeout, logger: logger}
}

func (b *LibreOfficeBackend) Name() string {
	return "libreoffice"
}

// Convert runs the headless converter and reads the produced file. The
// suite writes the output next to the input with the target extension.
func (b *LibreOfficeBackend) Convert(ctx context.Context, document []byte, format Format) ([]byte, error) {
	dir, input, cleanup, err := writeWorkFile(document)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{"--headless", "--convert-to", format.Extension(), "--outdir", dir, input}
	if err := runCommand(ctx, b.logger, b.timeout, dir, b.binary, args...); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(filepath.Join(dir, "input."+format.Extension()))
	if err != nil {
		return nil, fmt.Errorf("%s produced no %s output: %w", b.binary, format, err)
	}
	return out, nil
}
