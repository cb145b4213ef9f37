package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mrexodia/pangram-webui/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore opens a fresh database file under a temp dir and migrates it.
func setupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.RunMigrations(db))

	return store.NewSQLiteStore(db)
}

func createAnalysis(t *testing.T, s *store.SQLiteStore, text string, wordCount, credits int) *store.Analysis {
	t.Helper()
	a := &store.Analysis{
		Text:            text,
		WordCount:       wordCount,
		Credits:         credits,
		RequestJSON:     `{"text":"` + text + `"}`,
		ResponseJSON:    `{"prediction_short":"Human"}`,
		Headline:        "Fully human-written",
		PredictionShort: "Human",
		FractionAI:      0.02,
		FractionHuman:   0.98,
	}
	_, err := s.Create(context.Background(), a)
	require.NoError(t, err)
	return a
}

func TestCreateAndGetByID_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := createAnalysis(t, s, "the quick brown fox", 4, 1)
	require.NotZero(t, a.ID)
	require.NotEmpty(t, a.CreatedAt)

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
	assert.Equal(t, "the quick brown fox", got.Text)
	assert.Equal(t, 4, got.WordCount)
	assert.Equal(t, 1, got.Credits)
	assert.Equal(t, a.RequestJSON, got.RequestJSON)
	assert.Equal(t, a.ResponseJSON, got.ResponseJSON)
	assert.Equal(t, "Fully human-written", got.Headline)
	assert.Equal(t, "Human", got.PredictionShort)
	assert.InDelta(t, 0.02, got.FractionAI, 1e-9)
	assert.InDelta(t, 0.98, got.FractionHuman, 1e-9)
}

func TestCreate_MonotonicIDs(t *testing.T) {
	s := setupTestStore(t)

	first := createAnalysis(t, s, "first", 1, 1)
	second := createAnalysis(t, s, "second", 1, 1)

	assert.Greater(t, second.ID, first.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRecent_OrderAndLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createAnalysis(t, s, "text number", 2, 1)
	}

	got, err := s.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].CreatedAt, got[i].CreatedAt, "timestamps must be non-increasing")
		assert.Greater(t, got[i-1].ID, got[i].ID, "ids break timestamp ties")
	}
}

func TestListRecent_PreviewTruncated(t *testing.T) {
	s := setupTestStore(t)

	long := ""
	for i := 0; i < 20; i++ {
		long += "abcdefghij"
	}
	createAnalysis(t, s, long, 1, 1)

	got, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Preview, 60)
}

func TestListRecent_Empty(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchByText(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	match := createAnalysis(t, s, "the quick brown fox", 4, 1)
	createAnalysis(t, s, "a completely different text", 4, 1)

	got, err := s.SearchByText(ctx, "brown", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)

	none, err := s.SearchByText(ctx, "zzzznotfound", 20)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchByText_Ordering(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 4; i++ {
		createAnalysis(t, s, "shared needle text", 3, 1)
	}

	got, err := s.SearchByText(context.Background(), "needle", 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].CreatedAt, got[i].CreatedAt)
	}
}

func TestDeleteByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	keep := createAnalysis(t, s, "keep me", 2, 1)
	doomed := createAnalysis(t, s, "delete me", 2, 1)

	removed, err := s.DeleteByID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Unrelated rows are untouched.
	_, err = s.GetByID(ctx, keep.ID)
	assert.NoError(t, err)
}

func TestDeleteByID_MissingIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createAnalysis(t, s, "survivor", 1, 1)

	// Deleting a missing id twice is a no-op both times, never an error.
	for i := 0; i < 2; i++ {
		removed, err := s.DeleteByID(ctx, 12345)
		require.NoError(t, err)
		assert.False(t, removed)
	}

	stats, err := s.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAnalyses)
}

func TestAggregateStats_Empty(t *testing.T) {
	s := setupTestStore(t)

	stats, err := s.AggregateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalAnalyses)
	assert.Equal(t, 0, stats.TotalWords)
	assert.Empty(t, stats.FirstAnalysis)
	assert.Empty(t, stats.LastAnalysis)
}

func TestAggregateStats_Populated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := createAnalysis(t, s, "one two three", 3, 1)
	last := createAnalysis(t, s, "four five", 2, 1)

	stats, err := s.AggregateStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalAnalyses)
	assert.Equal(t, 5, stats.TotalWords)
	assert.Equal(t, first.CreatedAt, stats.FirstAnalysis)
	assert.Equal(t, last.CreatedAt, stats.LastAnalysis)
}

func TestListWordCounts(t *testing.T) {
	s := setupTestStore(t)

	createAnalysis(t, s, "a", 4, 1)
	createAnalysis(t, s, "b", 2500, 3)

	counts, err := s.ListWordCounts(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4, 2500}, counts)
}

func TestListAll(t *testing.T) {
	s := setupTestStore(t)

	createAnalysis(t, s, "first text", 2, 1)
	createAnalysis(t, s, "second text", 2, 1)

	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first, payloads intact.
	assert.Equal(t, "second text", all[0].Text)
	assert.Equal(t, "first text", all[1].Text)
	assert.JSONEq(t, `{"prediction_short":"Human"}`, all[0].ResponseJSON)
}
