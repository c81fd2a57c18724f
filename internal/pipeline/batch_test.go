package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfill/internal/converter"
	"docfill/internal/docx"
	"docfill/internal/resolver"
	"docfill/internal/values"
)

// newBatchEngine builds an engine without storage or access control;
// batch runs only scan, resolve, substitute and render.
func newBatchEngine(chain *converter.Chain) *Engine {
	if chain == nil {
		chain = converter.NewChain(nil)
	}
	res := resolver.New(nil, values.NewSyntheticGenerator(), 0, nil)
	return NewEngine(nil, nil, res, chain, nil, nil)
}

func TestRunBatchFillsDirectory(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	engine := newBatchEngine(nil)

	template := buildTemplate(t, "Charter party for {vessel_name}, flag {flag_state}.")
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "charter_a.docx"), template, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "charter_b.docx"), template, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("not a document"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "old_filled.docx"), template, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(inputDir, "archive"), 0755))

	reports, err := engine.RunBatch(context.Background(), inputDir, outputDir, []converter.Format{converter.FormatDocx})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	for _, report := range reports {
		require.NoError(t, report.Err)
		assert.Equal(t, 100, report.Score)
		require.Len(t, report.Outputs, 1)
	}
	assert.Equal(t, filepath.Join(inputDir, "charter_a.docx"), reports[0].Path)
	assert.Equal(t, filepath.Join(outputDir, "charter_a_filled.docx"), reports[0].Outputs[0])

	filled, err := os.ReadFile(reports[0].Outputs[0])
	require.NoError(t, err)
	text, err := docx.ExtractText(filled)
	require.NoError(t, err)
	assert.NotContains(t, text, "{")
	assert.Contains(t, text, "Charter party for ")
}

func TestRunBatchReportsPerFileFailures(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	engine := newBatchEngine(nil)

	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "broken.docx"), []byte("not a zip archive"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "good.docx"), buildTemplate(t, "{vessel_name}"), 0644))

	reports, err := engine.RunBatch(context.Background(), inputDir, outputDir, []converter.Format{converter.FormatDocx})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Error(t, reports[0].Err)
	assert.NoError(t, reports[1].Err)
	assert.FileExists(t, filepath.Join(outputDir, "good_filled.docx"))
}

func TestRunBatchWritesFallbackWhenConvertersFail(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	chain := converter.NewChain(nil,
		&stubBackend{name: "libreoffice", err: context.DeadlineExceeded},
	)
	engine := newBatchEngine(chain)

	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "charter.docx"), buildTemplate(t, "Port: {port}"), 0644))

	reports, err := engine.RunBatch(context.Background(), inputDir, outputDir, []converter.Format{converter.FormatPDF})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.NoError(t, reports[0].Err)

	target := filepath.Join(outputDir, "charter_fallback.txt")
	require.Equal(t, []string{target}, reports[0].Outputs)

	text, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Port: ")
	assert.NotContains(t, string(text), "{port}")
}

func TestRunBatchStopsWhenCancelled(t *testing.T) {
	inputDir := t.TempDir()
	engine := newBatchEngine(nil)

	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "charter.docx"), buildTemplate(t, "{port}"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := engine.RunBatch(ctx, inputDir, t.TempDir(), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestRunBatchMissingInputDir(t *testing.T) {
	engine := newBatchEngine(nil)

	_, err := engine.RunBatch(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input dir")
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	require.NoError(t, writeFileAtomic(target, []byte("rendered")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())
}
