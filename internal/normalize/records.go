package normalize

import (
	"math"

	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

// MedicationUsage is the canonical abortive-medication sub-record of an episode
type MedicationUsage struct {
	Name       string
	Category   string
	Timing     string
	ReliefAt2h string
	TakenAt    *int64
}

// Episode is the canonical migraine episode. Empty strings mean "not recorded".
type Episode struct {
	ID        string
	StartedAt int64
	EndedAt   *int64
	// DurationMin is nil unless EndedAt is strictly after StartedAt
	DurationMin *int

	Severity        *float64
	AuraPresent     bool
	AuraDurationMin *float64
	AuraTypes       []string

	Symptoms         []string
	Triggers         []string
	FoodTriggers     []string
	SleepRelation    []string
	SensoryAvoidance []string
	FunctionalImpact []string

	OnsetSpeed     string
	TimeToPeak     string
	AbortiveTiming string
	Relief         string
	Note           string
	Medication     *MedicationUsage

	MeetsICHD3Criteria bool
	MIDASScore         *float64
	MIDASGrade         string
	SleepHours         *float64
	SleepQuality       string
	CouldNotWork       bool
	BedBoundHours      *float64
}

// Ongoing reports whether the episode has no usable duration
func (e Episode) Ongoing() bool {
	return e.DurationMin == nil
}

// ToEpisode converts a stored episode into its canonical form
func ToEpisode(raw model.Episode) Episode {
	ep := Episode{
		ID:                 raw.ID,
		StartedAt:          raw.StartedAt,
		EndedAt:            raw.EndedAt,
		Severity:           SafeNumber(raw.Severity),
		AuraDurationMin:    SafeNumber(raw.AuraDurationMin),
		AuraTypes:          ParseStringList(raw.AuraTypes),
		Symptoms:           ParseStringList(raw.Symptoms),
		Triggers:           ParseStringList(raw.Triggers),
		FoodTriggers:       ParseStringList(raw.FoodTriggers),
		SleepRelation:      ParseStringList(raw.SleepRelation),
		SensoryAvoidance:   ParseStringList(raw.SensoryAvoidance),
		FunctionalImpact:   ParseStringList(raw.FunctionalImpact),
		OnsetSpeed:         Text(raw.OnsetSpeed),
		TimeToPeak:         Text(raw.TimeToPeak),
		AbortiveTiming:     Text(raw.AbortiveTiming),
		Relief:             Text(raw.Relief),
		Note:               Text(raw.Note),
		MeetsICHD3Criteria: Bool(raw.MeetsICHD3Criteria),
		MIDASScore:         SafeNumber(raw.MIDASScore),
		MIDASGrade:         Text(raw.MIDASGrade),
		SleepHours:         SafeNumber(raw.SleepHours),
		SleepQuality:       Text(raw.SleepQuality),
		CouldNotWork:       Bool(raw.CouldNotWork),
		BedBoundHours:      SafeNumber(raw.BedBoundHours),
	}

	if raw.EndedAt != nil && *raw.EndedAt > raw.StartedAt {
		d := int(math.Round(float64(*raw.EndedAt-raw.StartedAt) / 60000))
		ep.DurationMin = &d
	}

	ep.AuraPresent = Bool(raw.AuraPresent) ||
		(ep.AuraDurationMin != nil && *ep.AuraDurationMin > 0) ||
		len(ep.AuraTypes) > 0

	if raw.Medication != nil {
		ep.Medication = &MedicationUsage{
			Name:       Text(raw.Medication.Name),
			Category:   Text(raw.Medication.Category),
			Timing:     Text(raw.Medication.Timing),
			ReliefAt2h: Text(raw.Medication.ReliefAt2),
			TakenAt:    raw.Medication.TakenAt,
		}
		if ep.Medication.Name == "" {
			ep.Medication = nil
		}
	}

	return ep
}

// ToEpisodes converts a slice of stored episodes
func ToEpisodes(raw []model.Episode) []Episode {
	out := make([]Episode, 0, len(raw))
	for _, r := range raw {
		out = append(out, ToEpisode(r))
	}
	return out
}

// BloodPressure is a canonical blood pressure reading
type BloodPressure struct {
	Systolic   *float64
	Diastolic  *float64
	Pulse      *float64
	MeasuredAt int64
}

// ToBloodPressure converts a stored reading
func ToBloodPressure(raw model.BloodPressureReading) BloodPressure {
	return BloodPressure{
		Systolic:   SafeNumber(raw.Systolic),
		Diastolic:  SafeNumber(raw.Diastolic),
		Pulse:      SafeNumber(raw.Pulse),
		MeasuredAt: raw.MeasuredAt,
	}
}

// Schedule is a canonical dose schedule
type Schedule struct {
	ParentKind model.MedicationKind
	ParentID   string
	TimeOfDay  string
	DaysOfWeek []int
	Dosage     string
}

// ToSchedule converts a stored dose schedule. Weekdays outside 0-6 are dropped.
func ToSchedule(raw model.DoseSchedule) Schedule {
	days := make([]int, 0, 7)
	seen := make(map[int]bool)
	for _, d := range ParseIntList(raw.DaysOfWeek) {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	return Schedule{
		ParentKind: raw.ParentKind,
		ParentID:   raw.ParentID,
		TimeOfDay:  raw.TimeOfDay,
		DaysOfWeek: days,
		Dosage:     Text(raw.DosageOverride),
	}
}
