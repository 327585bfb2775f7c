package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordUpsert(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	first := &DoseRecord{
		Date:       "2026-08-30",
		DoseKey:    "cervitam_09:00",
		Status:     StatusMissed,
		RecordedAt: at(t, "2026-08-30 09:30:00"),
	}
	require.NoError(t, store.Record(first))
	require.NotEmpty(t, first.ID)

	second := &DoseRecord{
		Date:       "2026-08-30",
		DoseKey:    "cervitam_09:00",
		Status:     StatusTaken,
		RecordedAt: at(t, "2026-08-30 10:15:00"),
	}
	require.NoError(t, store.Record(second))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byKey, err := store.ForDate("2026-08-30")
	require.NoError(t, err)
	got := byKey["cervitam_09:00"]
	assert.Equal(t, StatusTaken, got.Status)
	// The row keeps its original identity across upserts.
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, at(t, "2026-08-30 10:15:00").Unix(), got.RecordedAt.Unix())
}

func TestStore_SameKeyOnDifferentDays(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	seedRecord(t, store, "2026-08-29", "cervitam_09:00", StatusTaken)
	seedRecord(t, store, "2026-08-30", "cervitam_09:00", StatusMissed)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStore_HistoryOrdering(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	require.NoError(t, store.Record(&DoseRecord{
		Date: "2026-08-29", DoseKey: "cervitam_09:00",
		Status: StatusTaken, RecordedAt: at(t, "2026-08-29 09:05:00"),
	}))
	require.NoError(t, store.Record(&DoseRecord{
		Date: "2026-08-30", DoseKey: "cervitam_09:00",
		Status: StatusTaken, RecordedAt: at(t, "2026-08-30 09:10:00"),
	}))
	require.NoError(t, store.Record(&DoseRecord{
		Date: "2026-08-30", DoseKey: "cervitam_21:00",
		Status: StatusTaken, RecordedAt: at(t, "2026-08-30 21:02:00"),
	}))

	records, err := store.HistoryInRange("2026-08-29", "2026-08-30", nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "cervitam_21:00", records[0].DoseKey)
	assert.Equal(t, Date("2026-08-30"), records[1].Date)
	assert.Equal(t, Date("2026-08-29"), records[2].Date)

	// The range is inclusive on both ends.
	records, err = store.HistoryInRange("2026-08-30", "2026-08-30", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = store.HistoryInRange("2026-08-30", "2026-08-29", nil)
	assert.Error(t, err)
}

func TestStore_PruneStrictlyBefore(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	seedRecord(t, store, "2026-05-31", "cervitam_09:00", StatusTaken)
	seedRecord(t, store, "2026-06-01", "cervitam_09:00", StatusTaken)
	seedRecord(t, store, "2026-06-02", "cervitam_09:00", StatusTaken)

	deleted, err := store.Prune("2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	records, err := store.HistoryInRange("2026-01-01", "2026-12-31", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.GreaterOrEqual(t, string(r.Date), "2026-06-01")
	}
}

func TestStore_PruneEmptyLog(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	deleted, err := store.Prune("2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestStore_RecordFillsDefaults(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	rec := &DoseRecord{Date: "2026-08-30", DoseKey: "cervitam_09:00", Status: StatusTaken}
	require.NoError(t, store.Record(rec))
	assert.NotEmpty(t, rec.ID)
	assert.WithinDuration(t, time.Now(), rec.RecordedAt, 5*time.Second)
}
