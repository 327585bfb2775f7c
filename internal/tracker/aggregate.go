package tracker

import (
	apperrors "github.com/hanafy/medtrack/internal/errors"
)

// ComplianceRate returns the taken percentage over recorded rows in
// the inclusive range, optionally filtered to a set of dose keys.
// Doses that were never recorded do not enter the denominator. An
// empty log yields 0.0, never a division error.
func (s *Store) ComplianceRate(start, end Date, keys []string) (float64, error) {
	if start > end {
		return 0, apperrors.New(apperrors.ErrInvalidDateRange.Code, apperrors.ErrInvalidDateRange.Message)
	}

	var counts struct {
		Taken int64
		Total int64
	}

	q := s.db.Model(&DoseRecord{}).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS taken, COUNT(*) AS total", StatusTaken).
		Where("date >= ? AND date <= ?", start, end)
	if len(keys) > 0 {
		q = q.Where("dose_key IN ?", keys)
	}
	if err := q.Scan(&counts).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to compute compliance")
	}

	if counts.Total == 0 {
		return 0.0, nil
	}
	return 100.0 * float64(counts.Taken) / float64(counts.Total), nil
}

type dayOutcome struct {
	Day   Date `gorm:"column:day"`
	Taken int64
	Total int64
}

// StreakResult is the outcome of a streak computation.
type StreakResult struct {
	CurrentStreak    int `json:"current_streak"`
	TotalDaysTracked int `json:"total_days_tracked"`
}

// CurrentStreak counts consecutive perfect days walking backwards
// from the most recent recorded day. A day is perfect when every
// recorded dose that day is taken. Days with no records at all do
// not appear in the log and therefore never break the run, a policy
// choice inherited from the recorded-only compliance semantics. At
// most windowDays recent distinct days are considered.
func (s *Store) CurrentStreak(windowDays int, keys []string) (StreakResult, error) {
	q := s.db.Model(&DoseRecord{}).
		Select("date AS day, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS taken, COUNT(*) AS total", StatusTaken).
		Group("date").
		Order("date DESC").
		Limit(windowDays)
	if len(keys) > 0 {
		q = q.Where("dose_key IN ?", keys)
	}

	var days []dayOutcome
	if err := q.Scan(&days).Error; err != nil {
		return StreakResult{}, apperrors.Wrap(err, apperrors.ErrStoreFailure.Code, "failed to compute streak")
	}

	result := StreakResult{TotalDaysTracked: len(days)}
	for _, d := range days {
		if d.Taken != d.Total {
			break
		}
		result.CurrentStreak++
	}
	return result, nil
}
