package tracker

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hanafy/medtrack/internal/config"
	apperrors "github.com/hanafy/medtrack/internal/errors"
	"github.com/hanafy/medtrack/internal/metrics"
	"github.com/hanafy/medtrack/internal/schedule"
)

// DoseStatus is one scheduled dose with its effective status for a day.
type DoseStatus struct {
	Dose       schedule.Dose `json:"dose"`
	Medication string        `json:"medication"`
	DoseKey    string        `json:"dose_key"`
	DayPart    string        `json:"day_part"`
	Status     Status        `json:"status"`
	Recorded   bool          `json:"recorded"`
	RecordedAt *time.Time    `json:"recorded_at,omitempty"`
}

// DaySummary is the effective view of one day across the whole schedule.
type DaySummary struct {
	Date    Date         `json:"date"`
	Doses   []DoseStatus `json:"doses"`
	Taken   int          `json:"taken"`
	Missed  int          `json:"missed"`
	Pending int          `json:"pending"`
	Skipped int          `json:"skipped"`
}

// Tracker coordinates the schedule, the event log and the status
// projection. It is the only entry point the API and CLI use.
type Tracker struct {
	store    *Store
	schedule *schedule.Schedule
	cfg      config.TrackerConfig
	logger   *zap.Logger
	loc      *time.Location
}

// New wires the tracker on top of an open database handle.
func New(db *gorm.DB, sched *schedule.Schedule, cfg config.TrackerConfig, logger *zap.Logger) (*Tracker, error) {
	store, err := NewStore(db)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		store:    store,
		schedule: sched,
		cfg:      cfg,
		logger:   logger,
		loc:      time.Local,
	}, nil
}

// Schedule exposes the immutable medication schedule.
func (t *Tracker) Schedule() *schedule.Schedule {
	return t.schedule
}

// Store exposes the underlying event log, mainly for maintenance commands.
func (t *Tracker) Store() *Store {
	return t.store
}

// Record validates and upserts one dose outcome. Recording the same
// dose again on the same day replaces the previous outcome.
func (t *Tracker) Record(dateStr, doseKey, statusStr string, now time.Time) (*DoseRecord, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if _, ok := t.schedule.Lookup(doseKey); !ok {
		return nil, apperrors.New(apperrors.ErrDoseNotFound.Code, apperrors.ErrDoseNotFound.Message)
	}
	status, err := ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	record := &DoseRecord{
		Date:       date,
		DoseKey:    doseKey,
		Status:     status,
		RecordedAt: now,
	}
	if err := t.store.Record(record); err != nil {
		metrics.RecordStoreFailure()
		return nil, err
	}

	metrics.RecordDose(string(status))
	t.logger.Info("dose recorded",
		zap.String("date", date.String()),
		zap.String("dose_key", doseKey),
		zap.String("status", string(status)))
	return record, nil
}

// Day returns the effective status of every scheduled dose on a day.
// Stored statuses are projected through the grace period at read time.
func (t *Tracker) Day(dateStr string, now time.Time) (*DaySummary, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	recorded, err := t.store.ForDate(date)
	if err != nil {
		metrics.RecordStoreFailure()
		return nil, err
	}

	summary := &DaySummary{Date: date}
	for _, dose := range t.schedule.AllDoses() {
		key := dose.Key()
		rec, has := recorded[key]
		scheduledAt := date.At(dose.Time, t.loc)
		status := Resolve(rec.Status, has, scheduledAt, now, t.cfg.GracePeriod())

		med, _ := t.schedule.Medication(dose.MedicationID)
		entry := DoseStatus{
			Dose:       dose,
			Medication: med.Name,
			DoseKey:    key,
			DayPart:    dose.DayPart(),
			Status:     status,
			Recorded:   has,
		}
		if has {
			at := rec.RecordedAt
			entry.RecordedAt = &at
		}
		summary.Doses = append(summary.Doses, entry)

		switch status {
		case StatusTaken:
			summary.Taken++
		case StatusMissed:
			summary.Missed++
		case StatusPending:
			summary.Pending++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	return summary, nil
}

// History returns recorded rows in an inclusive range, newest first,
// optionally filtered to one medication.
func (t *Tracker) History(startStr, endStr, medicationID string) ([]DoseRecord, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return nil, err
	}
	keys, err := t.keysFor(medicationID)
	if err != nil {
		return nil, err
	}

	records, err := t.store.HistoryInRange(start, end, keys)
	if err != nil && apperrors.GetCode(err) == apperrors.ErrStoreFailure.Code {
		metrics.RecordStoreFailure()
	}
	return records, err
}

// Compliance returns the taken percentage over the inclusive range.
// When the store fails the answer degrades to 0.0 instead of erroring,
// the failure is logged and counted.
func (t *Tracker) Compliance(startStr, endStr, medicationID string) (float64, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return 0, err
	}
	if start > end {
		return 0, apperrors.New(apperrors.ErrInvalidDateRange.Code, apperrors.ErrInvalidDateRange.Message)
	}
	keys, err := t.keysFor(medicationID)
	if err != nil {
		return 0, err
	}

	rate, err := t.store.ComplianceRate(start, end, keys)
	if err != nil {
		t.logger.Warn("compliance read degraded to zero", zap.Error(err))
		metrics.RecordDegradedRead("compliance")
		return 0.0, nil
	}
	return rate, nil
}

// Streak returns the current run of perfect days and how many
// distinct days the window examined, optionally scoped to one
// medication. Store failures degrade to zero like Compliance.
func (t *Tracker) Streak(medicationID string) (StreakResult, error) {
	keys, err := t.keysFor(medicationID)
	if err != nil {
		return StreakResult{}, err
	}

	streak, err := t.store.CurrentStreak(t.cfg.StreakWindowDays, keys)
	if err != nil {
		t.logger.Warn("streak read degraded to zero", zap.Error(err))
		metrics.RecordDegradedRead("streak")
		return StreakResult{}, nil
	}
	return streak, nil
}

// Prune removes records older than daysToKeep days. A non-positive
// daysToKeep falls back to the configured retention window. It only
// runs when called explicitly, there is no background sweep.
func (t *Tracker) Prune(now time.Time, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = t.cfg.RetentionDays
	}
	cutoff := DateOf(now).AddDays(-daysToKeep)
	deleted, err := t.store.Prune(cutoff)
	if err != nil {
		metrics.RecordStoreFailure()
		return 0, err
	}

	metrics.RecordPruned(deleted)
	t.logger.Info("pruned dose records",
		zap.String("cutoff", cutoff.String()),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// keysFor maps a medication filter to its dose key set. Dose keys can
// contain underscores, so filtering goes through the schedule index
// rather than a pattern match on the key column.
func (t *Tracker) keysFor(medicationID string) ([]string, error) {
	if medicationID == "" {
		return nil, nil
	}
	keys, ok := t.schedule.KeysFor(medicationID)
	if !ok {
		return nil, apperrors.New(apperrors.ErrMedicationNotFound.Code, apperrors.ErrMedicationNotFound.Message)
	}
	return keys, nil
}
