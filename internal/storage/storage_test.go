package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticklite/internal/store"
	"ticklite/internal/task"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "ticklite.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sample() []task.Task {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 10, 9, 30, 0, 123, time.UTC)
	done := time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC)
	return []task.Task{
		{
			ID: "b", Title: "Pay rent", Notes: "cash", Due: &due, Priority: task.PriorityHigh,
			Tags: []string{"rent", "monthly", "rent"}, Repeat: task.RepeatMonthly, CreatedAt: created,
		},
		{
			ID: "a", Title: "Fix sink", Priority: task.PriorityLow, Tags: []string{},
			Completed: true, CompletedAt: &done, Repeat: task.RepeatNone, CreatedAt: created,
		},
	}
}

func TestLoadWithoutSaveReportsNoState(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoState)
	assert.ErrorIs(t, err, store.ErrNoState)
}

func TestSaveLoadPreservesOrderAndFields(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	want := sample()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	assert.Equal(t, want[0].Title, got[0].Title)
	assert.Equal(t, want[0].Notes, got[0].Notes)
	assert.True(t, want[0].Due.Equal(*got[0].Due))
	assert.Equal(t, want[0].Tags, got[0].Tags)
	assert.Equal(t, task.RepeatMonthly, got[0].Repeat)
	assert.Equal(t, task.PriorityHigh, got[0].Priority)
	assert.True(t, want[0].CreatedAt.Equal(got[0].CreatedAt))
	assert.False(t, got[0].Completed)
	assert.Nil(t, got[0].CompletedAt)

	assert.True(t, got[1].Completed)
	assert.True(t, want[1].CompletedAt.Equal(*got[1].CompletedAt))
	assert.Nil(t, got[1].Due)
	assert.Equal(t, []string{}, got[1].Tags)
}

func TestSaveReplacesCollection(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Save(ctx, sample()[1:]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestSavedEmptyIsNotNoState(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, nil))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.db.Exec(`DELETE FROM meta;`)
	require.NoError(t, err)
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoState)
}

func TestMalformedRowIsReported(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))

	_, err := s.db.Exec(`UPDATE tasks SET due = 'not a time' WHERE id = 'b';`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReopenKeepsData(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	got, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStoreFallsBackOnMalformedDatabase(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	_, err := s.db.Exec(`UPDATE tasks SET priority = 'Urgent';`)
	require.NoError(t, err)

	st, err := store.Open(ctx, s)
	require.NoError(t, err)
	defer st.Close(ctx)
	assert.Empty(t, st.Snapshot())
}

func TestStoreOpenKeepsDataOnLoadFailure(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	_, err := store.Open(ctx, s, store.WithSeed(store.ExampleSeed(time.Now())))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	got, err := again.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Pay rent", got[0].Title)
	assert.Equal(t, "Fix sink", got[1].Title)
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	st, err := store.Open(ctx, s, store.WithSeed(store.ExampleSeed(time.Now())))
	require.NoError(t, err)
	snap := st.Snapshot()
	require.Len(t, snap, 2)
	st.ToggleComplete(snap[0].ID)
	require.NoError(t, st.Close(ctx))

	reopened, err := store.Open(ctx, s, store.WithSeed(store.ExampleSeed(time.Now())))
	require.NoError(t, err)
	defer reopened.Close(ctx)
	got := reopened.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "Pay rent", got[0].Title)
	assert.False(t, got[0].Completed)
	assert.True(t, got[1].Completed)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:", sqliteDSN("file::memory:"))
	dsn := sqliteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:///tmp/x.db")
	assert.Contains(t, dsn, "mode=rwc")
}
