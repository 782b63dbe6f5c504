package feedback

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFeedback(digest string) *Feedback {
	return &Feedback{
		ProfileDigest:   digest,
		VerdictLabel:    "Eligible",
		Confidence:      82.4,
		ReviewerVerdict: "Not eligible",
		ReviewerAgreed:  false,
		Notes:           "deferred after interview",
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("digest-1")
	require.NoError(t, store.Save(ctx, fb))
	assert.NotZero(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())

	got, err := store.Get(ctx, "digest-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fb.ID, got.ID)
	assert.Equal(t, "Eligible", got.VerdictLabel)
	assert.InDelta(t, 82.4, got.Confidence, 1e-9)
	assert.False(t, got.ReviewerAgreed)
	assert.Equal(t, "deferred after interview", got.Notes)
}

func TestSQLiteStore_Get_Absent(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_Save_UpsertsByDigest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleFeedback("digest-1")
	require.NoError(t, store.Save(ctx, first))

	second := sampleFeedback("digest-1")
	second.ReviewerVerdict = "Eligible"
	second.ReviewerAgreed = true
	require.NoError(t, store.Save(ctx, second))

	// Same digest updates in place rather than inserting a second row.
	assert.Equal(t, first.ID, second.ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, "digest-1")
	require.NoError(t, err)
	assert.True(t, got.ReviewerAgreed)
	assert.Equal(t, "Eligible", got.ReviewerVerdict)
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, sampleFeedback(fmt.Sprintf("digest-%d", i))))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := store.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)

	empty, err := store.List(ctx, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := sampleFeedback("digest-1")
	require.NoError(t, store.Save(ctx, fb))
	require.NoError(t, store.Delete(ctx, fb.ID))

	got, err := store.Get(ctx, "digest-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an unknown ID is a no-op.
	assert.NoError(t, store.Delete(ctx, 9999))
}

func TestSQLiteStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	source := newTestStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, source.Save(ctx, sampleFeedback(fmt.Sprintf("digest-%d", i))))
	}

	var buf bytes.Buffer
	require.NoError(t, source.ExportJSON(ctx, &buf))

	target := newTestStore(t)
	require.NoError(t, target.Save(ctx, sampleFeedback("digest-0")))

	imported, skipped, err := target.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, skipped)

	count, err := target.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSQLiteStore_ImportJSON_Malformed(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.ImportJSON(context.Background(), bytes.NewReader([]byte("{invalid")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "feedback.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), sampleFeedback("digest-1")))
}
