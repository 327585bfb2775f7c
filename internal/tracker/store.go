package tracker

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/hanafy/medtrack/internal/errors"
)

// Store handles dose record persistence
type Store struct {
	db *gorm.DB
}

// NewStore creates a new dose record store
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	if err := db.AutoMigrate(&DoseRecord{}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to migrate dose record schema")
	}

	store.createIndexes()

	return store, nil
}

// createIndexes creates database indexes
func (s *Store) createIndexes() {
	s.db.Exec("CREATE INDEX IF NOT EXISTS idx_dose_records_date ON dose_records(date)")
	s.db.Exec("CREATE INDEX IF NOT EXISTS idx_dose_records_key ON dose_records(dose_key)")
}

// Record upserts a dose record. Re-recording the same (date, dose_key)
// replaces the status and timestamp in place, last write wins.
func (s *Store) Record(record *DoseRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	record.CreatedAt = time.Now()

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "dose_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "recorded_at"}),
	}).Create(record).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to record dose")
	}
	return nil
}

// ForDate returns the records of one day keyed by dose key.
func (s *Store) ForDate(date Date) (map[string]DoseRecord, error) {
	var records []DoseRecord
	if err := s.db.Where("date = ?", date).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to load day records")
	}

	byKey := make(map[string]DoseRecord, len(records))
	for _, r := range records {
		byKey[r.DoseKey] = r
	}
	return byKey, nil
}

// DailyStatuses returns only the recorded statuses of one day.
// Absent keys mean no record, not pending.
func (s *Store) DailyStatuses(date Date) (map[string]Status, error) {
	byKey, err := s.ForDate(date)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]Status, len(byKey))
	for key, rec := range byKey {
		statuses[key] = rec.Status
	}
	return statuses, nil
}

// HistoryInRange returns records between start and end inclusive,
// newest day first, most recently recorded first within a day.
// An empty keys slice means no dose filter.
func (s *Store) HistoryInRange(start, end Date, keys []string) ([]DoseRecord, error) {
	if start > end {
		return nil, apperrors.New(apperrors.ErrInvalidDateRange.Code, apperrors.ErrInvalidDateRange.Message)
	}

	q := s.db.Where("date >= ? AND date <= ?", start, end)
	if len(keys) > 0 {
		q = q.Where("dose_key IN ?", keys)
	}

	var records []DoseRecord
	if err := q.Order("date DESC, recorded_at DESC").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to load history")
	}
	return records, nil
}

// Prune deletes all records strictly before the cutoff day and
// returns how many rows were removed.
func (s *Store) Prune(cutoff Date) (int64, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("date < ?", cutoff).Delete(&DoseRecord{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to prune records")
	}
	return deleted, nil
}

// Count returns the total number of stored records.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&DoseRecord{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to count records")
	}
	return n, nil
}
