package tracker

import (
	"fmt"
	"time"

	apperrors "github.com/hanafy/medtrack/internal/errors"
	"github.com/hanafy/medtrack/internal/schedule"
)

// Status is the recorded outcome of one dose on one day.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusMissed  Status = "missed"
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTaken, StatusMissed, StatusPending, StatusSkipped:
		return Status(s), nil
	default:
		return "", apperrors.Wrap(fmt.Errorf("%q", s), apperrors.ErrUnknownStatus.Code, apperrors.ErrUnknownStatus.Message)
	}
}

// IsTerminal reports whether a recorded status is immune to projection.
// Pending records behave like unrecorded doses and may still resolve to missed.
func (s Status) IsTerminal() bool {
	return s == StatusTaken || s == StatusMissed || s == StatusSkipped
}

const dateLayout = "2006-01-02"

// Date is a calendar day in ISO form. The string form sorts
// chronologically, which the store relies on for range queries.
type Date string

// ParseDate validates and canonicalizes a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInvalidDate.Code, apperrors.ErrInvalidDate.Message)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) String() string {
	return string(d)
}

// At combines the day with a scheduled time of day.
func (d Date) At(tod schedule.TimeOfDay, loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(dateLayout, string(d), loc)
	return t.Add(time.Duration(tod.Hour)*time.Hour + time.Duration(tod.Minute)*time.Minute)
}

// AddDays shifts the day, negative values go backwards.
func (d Date) AddDays(n int) Date {
	t, _ := time.Parse(dateLayout, string(d))
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

// DoseRecord is one row of the append-only event log. The pair
// (date, dose_key) is the logical identity, upserts replace in place.
type DoseRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Date       Date      `json:"date" gorm:"type:text;not null;uniqueIndex:idx_dose_records_day_dose"`
	DoseKey    string    `json:"dose_key" gorm:"not null;uniqueIndex:idx_dose_records_day_dose"`
	Status     Status    `json:"status" gorm:"type:text;not null"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name for dose records.
func (DoseRecord) TableName() string {
	return "dose_records"
}
