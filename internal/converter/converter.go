package converter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docfill/internal/docx"
)

// Format is a conversion target.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatText Format = "txt"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatDocx:
		return FormatDocx, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format %q (want pdf, docx or txt)", s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Backend converts a filled document into a target format.
type Backend interface {
	Name() string
	Convert(ctx context.Context, document []byte, format Format) ([]byte, error)
}

// Attempt records one backend invocation within a conversion.
type Attempt struct {
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// Outcome is the result of converting one document to one format. When
// Degraded is set, every configured backend failed and Bytes hold a plain
// text rendering instead of the requested format.
type Outcome struct {
	Format        Format    `json:"format"`
	Bytes         []byte    `json:"-"`
	ConverterUsed string    `json:"converter_used"`
	Attempts      []Attempt `json:"attempts"`
	Degraded      bool      `json:"degraded"`
}

// Extension returns the file extension matching the bytes actually
// produced, which differs from the requested format on a degraded outcome.
func (o *Outcome) Extension() string {
	if o.Degraded {
		return FormatText.Extension()
	}
	return o.Format.Extension()
}

const (
	converterNone      = "none"
	converterPlainText = "plaintext"
)

// Chain tries an ordered list of converter backends and falls back to a
// plain-text rendering when all of them fail. The backend list is fixed at
// construction and safe for concurrent use.
type Chain struct {
	backends []Backend
	logger   *zap.Logger
}

// NewChain creates a conversion chain over the given backends.
func NewChain(logger *zap.Logger, backends ...Backend) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{backends: backends, logger: logger}
}

// Convert renders the filled document into the target format. Backends are
// tried in order; each failure is recorded and the next backend takes
// over. The returned error is reserved for cancellation and unreadable
// input, never for backend failures.
func (c *Chain) Convert(ctx context.Context, document []byte, format Format) (*Outcome, error) {
	switch format {
	case FormatDocx:
		return &Outcome{Format: format, Bytes: document, ConverterUsed: converterNone}, nil
	case FormatText:
		text, err := docx.ExtractText(document)
		if err != nil {
			return nil, fmt.Errorf("failed to extract document text: %w", err)
		}
		return &Outcome{
			Format:        format,
			Bytes:         []byte(text),
			ConverterUsed: converterPlainText,
			Attempts:      []Attempt{{Backend: converterPlainText}},
		}, nil
	}

	outcome := &Outcome{Format: format}
	for _, b := range c.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := b.Convert(ctx, document, format)
		if err == nil {
			outcome.Bytes = out
			outcome.ConverterUsed = b.Name()
			outcome.Attempts = append(outcome.Attempts, Attempt{Backend: b.Name()})
			return outcome, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("converter backend failed",
			zap.String("backend", b.Name()),
			zap.String("format", string(format)),
			zap.Error(err))
		outcome.Attempts = append(outcome.Attempts, Attempt{Backend: b.Name(), Error: err.Error()})
	}

	// Last resort: a plain-text rendering extracted from the document.
	text, err := docx.ExtractText(document)
	if err != nil {
		return nil, fmt.Errorf("all converters failed and document text is unreadable: %w", err)
	}
	outcome.Bytes = []byte(text)
	outcome.ConverterUsed = converterPlainText
	outcome.Attempts = append(outcome.Attempts, Attempt{Backend: converterPlainText})
	outcome.Degraded = true
	c.logger.Warn("all converter backends failed, produced plain text rendering",
		zap.String("format", string(format)),
		zap.Int("attempts", len(outcome.Attempts)))
	return outcome, nil
}
