package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_BlobRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	key, err := store.PutBlob(ctx, "templates/abc", []byte("original bytes"))
	require.NoError(t, err)
	assert.Equal(t, "templates/abc", key)

	data, err := store.GetBlob(ctx, "templates/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)

	// Overwrite under the same key.
	_, err = store.PutBlob(ctx, "templates/abc", []byte("updated bytes"))
	require.NoError(t, err)

	data, err = store.GetBlob(ctx, "templates/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated bytes"), data)

	_, err = store.GetBlob(ctx, "templates/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_BlobSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.PutBlob(ctx, "outputs/doc.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.GetBlob(ctx, "outputs/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
}

func TestSQLiteStore_MetadataRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	err = store.PutMetadata(ctx, "outputs/doc-1", Record{
		"score":          92,
		"converter_used": "libreoffice",
		"degraded":       false,
	})
	require.NoError(t, err)

	record, err := store.GetMetadata(ctx, "outputs/doc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 92, record["score"])
	assert.Equal(t, "libreoffice", record["converter_used"])
	assert.Equal(t, false, record["degraded"])

	_, err = store.GetMetadata(ctx, "outputs/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListMetadataByPrefix(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.PutMetadata(ctx, "templates/b", Record{"name": "invoice"}))
	require.NoError(t, store.PutMetadata(ctx, "templates/a", Record{"name": "contract"}))
	require.NoError(t, store.PutMetadata(ctx, "outputs/c", Record{"name": "rendered"}))

	entries, err := store.ListMetadata(ctx, "templates/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "templates/a", entries[0].Key)
	assert.Equal(t, "contract", entries[0].Record["name"])
	assert.Equal(t, "templates/b", entries[1].Key)

	all, err := store.ListMetadata(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_UsageCounting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.IncrementUsage(ctx, "user-1", "document_fill", day1))
	require.NoError(t, store.IncrementUsage(ctx, "user-1", "document_fill", day1))
	require.NoError(t, store.IncrementUsage(ctx, "user-1", "document_fill", day2))
	require.NoError(t, store.IncrementUsage(ctx, "user-2", "document_fill", day2))
	require.NoError(t, store.IncrementUsage(ctx, "user-1", "conversion", day2))

	total, err := store.CountSince(ctx, "user-1", "document_fill", day1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	fromDay2, err := store.CountSince(ctx, "user-1", "document_fill", day2)
	require.NoError(t, err)
	assert.Equal(t, 1, fromDay2)

	afterAll, err := store.CountSince(ctx, "user-1", "document_fill", day2.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, afterAll)

	other, err := store.CountSince(ctx, "user-2", "document_fill", day1)
	require.NoError(t, err)
	assert.Equal(t, 1, other)
}
