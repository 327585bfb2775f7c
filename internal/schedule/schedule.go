package schedule

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/hanafy/medtrack/internal/errors"
)

// TimeOfDay is a wall-clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, apperrors.Wrap(fmt.Errorf("%q", s), apperrors.ErrInvalidTime.Code, "time must be HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, apperrors.Wrap(fmt.Errorf("%q", s), apperrors.ErrInvalidTime.Code, "hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, apperrors.Wrap(fmt.Errorf("%q", s), apperrors.ErrInvalidTime.Code, "minute out of range")
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight, used for stable ordering.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Medication is an immutable configuration entity loaded at startup.
type Medication struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Times        []TimeOfDay `yaml:"-"`
	Instructions string      `yaml:"instructions,omitempty"`
}

// Dose is one scheduled administration of a medication.
type Dose struct {
	MedicationID string
	Time         TimeOfDay
}

// Key returns the durable identifier the event log indexes on.
// It deliberately omits the date, so the same key recurs every day.
func (d Dose) Key() string {
	return d.MedicationID + "_" + d.Time.String()
}

// DayPart groups doses for display: before 15:00 is morning.
func (d Dose) DayPart() string {
	if d.Time.Hour < 15 {
		return "morning"
	}
	return "evening"
}

// Schedule is the validated, immutable set of medications and doses.
type Schedule struct {
	medications []Medication
	doses       []Dose
	byKey       map[string]Dose
	byMed       map[string][]string
}

// New validates the medication set and builds the dose index.
func New(medications []Medication) (*Schedule, error) {
	s := &Schedule{
		medications: medications,
		byKey:       make(map[string]Dose),
		byMed:       make(map[string][]string),
	}

	for _, med := range medications {
		if med.ID == "" {
			return nil, apperrors.Wrap(fmt.Errorf("medication %q", med.Name), apperrors.ErrConfigInvalid.Code, "medication id is required")
		}
		if len(med.Times) == 0 {
			return nil, apperrors.Wrap(fmt.Errorf("medication %q", med.ID), apperrors.ErrEmptySchedule.Code, apperrors.ErrEmptySchedule.Message)
		}
		if _, exists := s.byMed[med.ID]; exists {
			return nil, apperrors.Wrap(fmt.Errorf("medication %q", med.ID), apperrors.ErrConfigInvalid.Code, "duplicate medication id")
		}
		s.byMed[med.ID] = []string{}

		for _, t := range med.Times {
			dose := Dose{MedicationID: med.ID, Time: t}
			key := dose.Key()
			if _, exists := s.byKey[key]; exists {
				return nil, apperrors.Wrap(fmt.Errorf("dose key %q", key), apperrors.ErrDuplicateDoseKey.Code, apperrors.ErrDuplicateDoseKey.Message)
			}
			s.byKey[key] = dose
			s.byMed[med.ID] = append(s.byMed[med.ID], key)
			s.doses = append(s.doses, dose)
		}
	}

	// Stable order: scheduled time ascending, ties broken by medication id.
	sort.SliceStable(s.doses, func(i, j int) bool {
		if s.doses[i].Time.Minutes() != s.doses[j].Time.Minutes() {
			return s.doses[i].Time.Minutes() < s.doses[j].Time.Minutes()
		}
		return s.doses[i].MedicationID < s.doses[j].MedicationID
	})

	return s, nil
}

// Medications returns the configured medications in file order.
func (s *Schedule) Medications() []Medication {
	return s.medications
}

// AllDoses returns every dose in stable schedule order.
func (s *Schedule) AllDoses() []Dose {
	return s.doses
}

// Lookup resolves a dose key back to its dose.
func (s *Schedule) Lookup(key string) (Dose, bool) {
	d, ok := s.byKey[key]
	return d, ok
}

// Medication returns the configuration entry for one medication id.
func (s *Schedule) Medication(id string) (Medication, bool) {
	for _, med := range s.medications {
		if med.ID == id {
			return med, true
		}
	}
	return Medication{}, false
}

// KeysFor returns all dose keys belonging to one medication.
func (s *Schedule) KeysFor(medicationID string) ([]string, bool) {
	keys, ok := s.byMed[medicationID]
	return keys, ok
}

type medicationFile struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Times        []string `yaml:"times"`
	Instructions string   `yaml:"instructions"`
}

type scheduleFile struct {
	Medications []medicationFile `yaml:"medications"`
}

// LoadFile reads the static medication schedule from a YAML file.
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigInvalid.Code, "failed to read schedule file")
	}
	return Parse(data)
}

// Parse builds a Schedule from raw YAML.
func Parse(data []byte) (*Schedule, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigInvalid.Code, "failed to parse schedule file")
	}

	medications := make([]Medication, 0, len(file.Medications))
	for _, entry := range file.Medications {
		med := Medication{
			ID:           entry.ID,
			Name:         entry.Name,
			Instructions: entry.Instructions,
		}
		if med.Name == "" {
			med.Name = entry.ID
		}
		for _, raw := range entry.Times {
			t, err := ParseTimeOfDay(raw)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrConfigInvalid.Code, fmt.Sprintf("medication %q has a bad time", entry.ID))
			}
			med.Times = append(med.Times, t)
		}
		medications = append(medications, med)
	}

	return New(medications)
}
