package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxCapturedOutput = 64 * 1024

// ErrUnavailable marks a converter whose binary is not installed.
var ErrUnavailable = errors.New("converter unavailable")

// runCommand executes a converter binary with a bounded timeout. Captured
// output is size-limited so a chatty converter cannot balloon memory.
func runCommand(ctx context.Context, logger *zap.Logger, timeout time.Duration, dir, binary string, args ...string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s not available: %w", binary, ErrUnavailable)
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, max: maxCapturedOutput}
	cmd.Stderr = &limitedWriter{w: &stderr, max: maxCapturedOutput}

	started := time.Now()
	err := cmd.Run()
	logger.Debug("converter command finished",
		zap.String("binary", binary),
		zap.Duration("duration", time.Since(started)),
		zap.Error(err))

	if err == nil {
		return nil
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", binary, timeout)
	}
	if execCtx.Err() != nil {
		return execCtx.Err()
	}
	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		detail = strings.TrimSpace(stdout.String())
	}
	if detail != "" {
		return fmt.Errorf("%s failed: %w: %s", binary, err, firstLine(detail))
	}
	return fmt.Errorf("%s failed: %w", binary, err)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// limitedWriter caps the total bytes written, silently discarding the rest.
type limitedWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		return n, nil
	}
	if remaining := lw.max - lw.written; int64(n) > remaining {
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
