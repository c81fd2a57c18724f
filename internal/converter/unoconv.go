package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// UnoconvBackend converts documents with the unoconv bridge. It is the
// lighter secondary converter behind the office suite.
type UnoconvBackend struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewUnoconv creates the unoconv backend. An empty binary falls back to
// unoconv on PATH.
func NewUnoconv(binary string, timeout time.Duration, logger *zap.Logger) *UnoconvBackend {
	if binary == "" {
		binary = "unoconv"
	}
	if timeout <= 0 {
		timeout = defaultConvertTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnoconvBackend{binary: binary, timeout: timeout, logger: logger}
}

func (b *UnoconvBackend) Name() string {
	return "unoconv"
}

func (b *UnoconvBackend) Convert(ctx context.Context, document []byte, format Format) ([]byte, error) {
	dir, input, cleanup, err := writeWorkFile(document)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	output := filepath.Join(dir, "output."+format.Extension())
	args := []string{"-f", format.Extension(), "-o", output, input}
	if err := runCommand(ctx, b.logger, b.timeout, dir, b.binary, args...); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("%s produced no %s output: %w", b.binary, format, err)
	}
	return out, nil
}
