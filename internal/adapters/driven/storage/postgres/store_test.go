package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// setupTestStore connects to the database named by SERCHA_RAG_TEST_POSTGRES_DSN.
// Tests are skipped when it is unset.
func setupTestStore(t *testing.T) *VectorStore {
	t.Helper()

	dsn := os.Getenv("SERCHA_RAG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SERCHA_RAG_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewVectorStore(ctx, dsn, 3)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx))

	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = store.Close()
	})
	return store
}

func testEntry(index int, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Fragment: domain.Fragment{
			ID:       uuid.NewString(),
			SourceID: "/docs/guide.txt",
			Index:    index,
			Text:     "fragment text",
			Start:    0,
			End:      13,
			Metadata: map[string]any{domain.MetaFilename: "guide.txt"},
		},
		Embedding: vec,
	}
}

func TestNewVectorStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVectorStore(ctx, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", 3)

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestVectorStore_AddSearchCount(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	near := testEntry(0, 1, 0, 0)
	far := testEntry(1, 0, 0, 1)
	require.NoError(t, store.Add(ctx, []domain.IndexEntry{near, far}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := store.Search(ctx, []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.Fragment.ID, results[0].Fragment.ID)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.Equal(t, "guide.txt", results[0].Fragment.Metadata[domain.MetaFilename])
	assert.Equal(t, 0, results[0].Fragment.Metadata[domain.MetaChunkIndex])
}

func TestVectorStore_Search_Empty(t *testing.T) {
	store := setupTestStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorStore_Add_Atomic(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	// Second entry has the wrong dimensionality for vector(3)
	err := store.Add(ctx, []domain.IndexEntry{testEntry(0, 1, 0, 0), testEntry(1, 1, 0)})

	assert.ErrorIs(t, err, domain.ErrStorageFailed)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVectorStore_ReplaceSource(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.Add(ctx, []domain.IndexEntry{testEntry(0, 1, 0, 0), testEntry(1, 0, 1, 0)}))

	fresh := testEntry(0, 0, 0, 1)
	require.NoError(t, store.ReplaceSource(ctx, "/docs/guide.txt", []domain.IndexEntry{fresh}))

	results, err := store.Search(ctx, []float32{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fresh.Fragment.ID, results[0].Fragment.ID)

	// A rejected replacement rolls the delete back
	err = store.ReplaceSource(ctx, "/docs/guide.txt", []domain.IndexEntry{testEntry(0, 1, 0)})
	assert.ErrorIs(t, err, domain.ErrStorageFailed)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorStore_ClearTwice(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.Add(ctx, []domain.IndexEntry{testEntry(0, 1, 0, 0)}))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, "postgres", store.Backend())
	assert.Equal(t, domain.MetricCosine, store.Metric())
	assert.NotEmpty(t, store.Location())
}
