// Package adherence scores routine adherence for the transformation tracker: workout,
// protein, habit and check-in percentages, the weighted transformation score, and
// per-item streaks and adherence ratios.
package adherence

import (
	"math"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

const (
	DefaultWorkoutWeeklyTarget = 5
	// TrackedHabitCount is the number of boolean habits on a RoutineChecklist row
	TrackedHabitCount = 13
	// MealSlotsForCompliance is how many of the four meal slots make a proxy protein day
	MealSlotsForCompliance = 3
	// proxyProteinDays is the fixed base for the meal-slot fallback
	proxyProteinDays = 7

	WorkoutWeight = 0.25
	ProteinWeight = 0.25
	HabitWeight   = 0.35
	CheckinWeight = 0.15
)

// TransformationScore is the weighted composite and its four components
type TransformationScore struct {
	WorkoutPct float64 `json:"workout_pct"`
	ProteinPct float64 `json:"protein_pct"`
	HabitPct   float64 `json:"habit_pct"`
	CheckinPct float64 `json:"checkin_pct"`
	Score      int     `json:"score"`
}

// Window is an inclusive time range
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the window is unset
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether ms falls inside the window
func (w Window) Contains(ms int64) bool {
	return ms >= w.Start.UnixMilli() && ms <= w.End.UnixMilli()
}

// CurrentWeek returns the Monday-start week containing now
func CurrentWeek(now time.Time) Window {
	day := normalize.StartOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return Window{
		Start: monday,
		End:   monday.AddDate(0, 0, 7).Add(-time.Millisecond),
	}
}

// Clamp limits a percentage to [0, 100]
func Clamp(pct float64) float64 {
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	return math.Min(pct, 100)
}

// WorkoutPct is logged workouts over the weekly target, capped at 100. A target of
// zero means nothing was expected and yields 100.
func WorkoutPct(workouts []model.WorkoutLog, weeklyTarget int) float64 {
	if weeklyTarget <= 0 {
		return 100
	}
	return Clamp(float64(len(workouts)) / float64(weeklyTarget) * 100)
}

// ProteinCompliancePct uses explicit gram logs when any exist, dividing by the number of
// those logs. Otherwise it falls back to days with at least three meal slots done,
// divided by a fixed seven.
func ProteinCompliancePct(meals []model.MealPlanLog, minGrams float64) float64 {
	explicit, met := 0, 0
	for _, m := range meals {
		grams := normalize.SafeNumber(m.ProteinGrams)
		if grams == nil {
			continue
		}
		explicit++
		if *grams >= minGrams {
			met++
		}
	}
	if explicit > 0 {
		return Clamp(math.Round(float64(met) / float64(explicit) * 100))
	}

	proxyDays := 0
	for _, m := range meals {
		if mealSlotsDone(m) >= MealSlotsForCompliance {
			proxyDays++
		}
	}
	return Clamp(math.Round(float64(proxyDays) / proxyProteinDays * 100))
}

func mealSlotsDone(m model.MealPlanLog) int {
	n := 0
	for _, done := range []bool{m.BreakfastDone, m.LunchDone, m.DinnerDone, m.SnackDone} {
		if done {
			n++
		}
	}
	return n
}

// HabitCompletionPct is the share of true habit fields across all checklist rows.
// No rows yields 0.
func HabitCompletionPct(rows []model.RoutineChecklist) float64 {
	if len(rows) == 0 {
		return 0
	}
	done := 0
	for _, r := range rows {
		done += HabitsDone(r)
	}
	return Clamp(math.Round(float64(done) / float64(len(rows)*TrackedHabitCount) * 100))
}

// HabitsDone counts the true habit fields of one row
func HabitsDone(r model.RoutineChecklist) int {
	n := 0
	for _, done := range []bool{
		r.Workout, r.Cardio, r.Steps, r.Water, r.Protein, r.Creatine, r.Supplements,
		r.SkincareAM, r.SkincarePM, r.Sunscreen, r.Stretching, r.SleepEightHours, r.NoAlcohol,
	} {
		if done {
			n++
		}
	}
	return n
}

// CheckinPct is 100 when at least one weekly check-in falls in the window, else 0
func CheckinPct(checkins []model.WeeklyCheckin, w Window) float64 {
	for _, c := range checkins {
		if w.Contains(c.CheckedAt) {
			return 100
		}
	}
	return 0
}

// Score combines the four components with 25/25/35/15 weights, rounded and clamped
func Score(workout, protein, habits, checkin float64) TransformationScore {
	workout, protein, habits, checkin = Clamp(workout), Clamp(protein), Clamp(habits), Clamp(checkin)
	total := workout*WorkoutWeight + protein*ProteinWeight + habits*HabitWeight + checkin*CheckinWeight
	return TransformationScore{
		WorkoutPct: workout,
		ProteinPct: protein,
		HabitPct:   habits,
		CheckinPct: checkin,
		Score:      int(Clamp(math.Round(total))),
	}
}
