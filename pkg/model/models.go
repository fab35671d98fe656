package model

// Raw records as delivered by storage. Timestamps are epoch milliseconds.
//
// Fields typed `any` are loosely typed at rest: list fields may hold a JSON-encoded
// string, a native list or a comma-separated string, and numeric fields may hold any
// numeric type or garbage. Only the normalize package interprets them.

// MedicationKind distinguishes medications from supplements
type MedicationKind string

const (
	MedicationKindMedication MedicationKind = "medication"
	MedicationKindSupplement MedicationKind = "supplement"
)

// MedicationUsage is the abortive medication taken during an episode
type MedicationUsage struct {
	Name      *string `json:"name,omitempty"`
	Category  *string `json:"category,omitempty"`
	Timing    *string `json:"timing,omitempty"`
	ReliefAt2 *string `json:"relief_at_2h,omitempty"`
	TakenAt   *int64  `json:"taken_at,omitempty"`
}

// Episode represents one logged migraine episode
type Episode struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	StartedAt        int64            `json:"started_at"`
	EndedAt          *int64           `json:"ended_at,omitempty"`
	Severity         any              `json:"severity,omitempty"`
	AuraPresent      *bool            `json:"aura_present,omitempty"`
	AuraDurationMin  any              `json:"aura_duration_min,omitempty"`
	AuraTypes        any              `json:"aura_types,omitempty"`
	Symptoms         any              `json:"symptoms,omitempty"`
	Triggers         any              `json:"triggers,omitempty"`
	FoodTriggers     any              `json:"food_triggers,omitempty"`
	SleepRelation    any              `json:"sleep_relation,omitempty"`
	SensoryAvoidance any              `json:"sensory_avoidance,omitempty"`
	FunctionalImpact any              `json:"functional_impact,omitempty"`
	OnsetSpeed       *string          `json:"onset_speed,omitempty"`
	TimeToPeak       *string          `json:"time_to_peak,omitempty"`
	AbortiveTiming   *string          `json:"abortive_timing,omitempty"`
	Relief           *string          `json:"relief,omitempty"`
	Note             *string          `json:"note,omitempty"`
	Medication       *MedicationUsage `json:"medication,omitempty"`

	// Fields captured by the detailed logging screen for clinical export
	MeetsICHD3Criteria *bool   `json:"meets_ichd3_criteria,omitempty"`
	MIDASScore         any     `json:"midas_score,omitempty"`
	MIDASGrade         *string `json:"midas_grade,omitempty"`
	SleepHours         any     `json:"sleep_hours,omitempty"`
	SleepQuality       *string `json:"sleep_quality,omitempty"`
	CouldNotWork       *bool   `json:"could_not_work,omitempty"`
	BedBoundHours      any     `json:"bed_bound_hours,omitempty"`
}

// BloodPressureReading represents a blood pressure measurement
type BloodPressureReading struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Systolic   any    `json:"systolic"`
	Diastolic  any    `json:"diastolic"`
	Pulse      any    `json:"pulse,omitempty"`
	MeasuredAt int64  `json:"measured_at"`
}

// Medication represents a medication or supplement the user tracks
type Medication struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      MedicationKind `json:"kind"`
	Name      string         `json:"name"`
	Dosage    *string        `json:"dosage,omitempty"`
	Active    bool           `json:"active"`
	StartedAt int64          `json:"started_at"`
}

// MedicationLog represents one taken dose of a medication or supplement
type MedicationLog struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	MedicationID *string        `json:"medication_id,omitempty"`
	Kind         MedicationKind `json:"kind"`
	Name         string         `json:"name"`
	Dosage       *string        `json:"dosage,omitempty"`
	TakenAt      int64          `json:"taken_at"`
}

// DoseSchedule is a recurring dose reminder for a medication or supplement
type DoseSchedule struct {
	ID             string         `json:"id"`
	ParentKind     MedicationKind `json:"parent_kind"`
	ParentID       string         `json:"parent_id"`
	TimeOfDay      string         `json:"time_of_day"`
	DaysOfWeek     any            `json:"days_of_week"`
	DosageOverride *string        `json:"dosage_override,omitempty"`
}

// MeditationLog represents a completed meditation session
type MeditationLog struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	PracticedAt int64   `json:"practiced_at"`
	DurationMin any     `json:"duration_min"`
	Kind        *string `json:"kind,omitempty"`
}

// RoutineChecklist is the daily transformation checklist, one row per day
type RoutineChecklist struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Date            int64  `json:"date"`
	Workout         bool   `json:"workout"`
	Cardio          bool   `json:"cardio"`
	Steps           bool   `json:"steps"`
	Water           bool   `json:"water"`
	Protein         bool   `json:"protein"`
	Creatine        bool   `json:"creatine"`
	Supplements     bool   `json:"supplements"`
	SkincareAM      bool   `json:"skincare_am"`
	SkincarePM      bool   `json:"skincare_pm"`
	Sunscreen       bool   `json:"sunscreen"`
	Stretching      bool   `json:"stretching"`
	SleepEightHours bool   `json:"sleep_8h"`
	NoAlcohol       bool   `json:"no_alcohol"`
}

// WeeklyCheckin represents a weekly body check-in
type WeeklyCheckin struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	CheckedAt int64  `json:"checked_at"`
	WeightKg  any    `json:"weight_kg,omitempty"`
	WaistCm   any    `json:"waist_cm,omitempty"`
	Steps     any    `json:"steps,omitempty"`
}

// WorkoutLog represents one logged workout
type WorkoutLog struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	PerformedAt int64   `json:"performed_at"`
	Kind        *string `json:"kind,omitempty"`
	DurationMin any     `json:"duration_min,omitempty"`
}

// MealPlanLog records meal-plan adherence for one day
type MealPlanLog struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Date          int64  `json:"date"`
	BreakfastDone bool   `json:"breakfast_done"`
	LunchDone     bool   `json:"lunch_done"`
	DinnerDone    bool   `json:"dinner_done"`
	SnackDone     bool   `json:"snack_done"`
	ProteinGrams  any    `json:"protein_grams,omitempty"`
}

// TransformationGoal holds the user's current fitness targets
type TransformationGoal struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	ProteinMinGrams any    `json:"protein_min_grams,omitempty"`
	TargetWeightKg  any    `json:"target_weight_kg,omitempty"`
	StartedAt       int64  `json:"started_at"`
}
