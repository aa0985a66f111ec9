package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/report"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seq(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func setupRepo(t *testing.T) (*StoreRepository, *storage.MemoryBackend, *time.Time) {
	t.Helper()
	raw := storage.NewMemoryBackend()
	scoped, err := storage.NewScoped("u1", raw)
	require.NoError(t, err)

	now := testNow
	repo := NewRepository(scoped,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(seq("rep")),
		WithEngine(report.NewEngine(report.WithIDGenerator(seq("gen")), report.WithClock(func() time.Time { return now }))),
	)
	return repo, raw, &now
}

func TestSave_CreatesAndScopes(t *testing.T) {
	ctx := context.Background()
	repo, raw, _ := setupRepo(t)

	saved, err := repo.Save(ctx, Report{Title: "  Pump service ", Customer: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, "rep-1", saved.ID)
	assert.Equal(t, "Pump service", saved.Title)
	assert.Equal(t, testNow, saved.CreatedAt)
	assert.Equal(t, testNow, saved.UpdatedAt)
	require.NotNil(t, saved.Data)
	assert.Empty(t, saved.Data.Entries)

	_, ok, err := raw.GetItem(ctx, "fsr.u1.reports")
	require.NoError(t, err)
	assert.True(t, ok, "reports are stored under the account scope")
	_, ok, _ = raw.GetItem(ctx, storage.KeyReports)
	assert.False(t, ok)
}

func TestSave_UpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	repo, _, now := setupRepo(t)

	first, err := repo.Save(ctx, Report{Title: "a"})
	require.NoError(t, err)
	second, err := repo.Save(ctx, Report{Title: "b"})
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	first.Title = "a2"
	first.CreatedAt = time.Time{}
	e, _ := report.NewEntry(report.TypeCommentary)
	first.Data = report.AddEntry(first.Data, e)
	updated, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, testNow, updated.CreatedAt, "creation time is kept")
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{first.ID, second.ID}, []string{list[0].ID, list[1].ID})
	assert.Equal(t, "a2", list[0].Title)
	require.Len(t, list[0].Data.Entries, 1)
	assert.Equal(t, e.ID, list[0].Data.Entries[0].ID)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setupRepo(t)

	saved, err := repo.Save(ctx, Report{Title: "x"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Title, got.Title)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := setupRepo(t)

	a, _ := repo.Save(ctx, Report{Title: "a"})
	b, _ := repo.Save(ctx, Report{Title: "b"})

	require.NoError(t, repo.Delete(ctx, a.ID))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), common.ErrorNotFound)
}

func TestList_NormalizesStoredData(t *testing.T) {
	ctx := context.Background()
	repo, raw, _ := setupRepo(t)

	require.NoError(t, raw.SetItem(ctx, "fsr.u1.reports", `[
		{"id": "r1", "title": "old", "data": {"issues": [{"id": "i1", "text": "leak"}]}},
		{"id": "r2", "title": "no data"}
	]`))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.Len(t, list[0].Data.Entries, 1)
	pn, ok := list[0].Data.Entries[0].PhotoNote()
	require.True(t, ok)
	assert.Equal(t, "leak", pn.Note)
	assert.Len(t, list[0].Data.Issues(), 1)

	require.NotNil(t, list[1].Data)
	assert.Empty(t, list[1].Data.Entries)
}

func TestList_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	repo, raw, _ := setupRepo(t)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Report{}, list)

	require.NoError(t, raw.SetItem(ctx, "fsr.u1.reports", "{broken"))
	_, err = repo.List(ctx)
	assert.Error(t, err)
}

func TestTripTypes(t *testing.T) {
	ctx := context.Background()
	repo, raw, _ := setupRepo(t)

	types, err := repo.TripTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, types)

	require.NoError(t, repo.SetTripTypes(ctx, []string{" Install ", "", "Repair", "Install", "PM"}))
	types, err = repo.TripTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Install", "Repair", "PM"}, types)

	v, _, _ := raw.GetItem(ctx, "fsr.u1.tripTypes")
	assert.JSONEq(t, `["Install","Repair","PM"]`, v)
}

func TestRepositories_AreIsolatedPerAccount(t *testing.T) {
	ctx := context.Background()
	raw := storage.NewMemoryBackend()
	a, err := storage.NewScoped("a", raw)
	require.NoError(t, err)
	b, err := storage.NewScoped("b", raw)
	require.NoError(t, err)

	_, err = NewRepository(a).Save(ctx, Report{Title: "mine"})
	require.NoError(t, err)

	list, err := NewRepository(b).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
