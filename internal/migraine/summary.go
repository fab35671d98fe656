// Package migraine derives the clinician-facing DoctorSummary from raw logged records:
// episode statistics, episodic/chronic classification, red flags, histograms, medication
// overuse screening and blood pressure context.
package migraine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

// Chronic classification thresholds, applied to the query window as-is
const (
	ChronicHeadacheDays = 15
	ChronicMigraineDays = 8

	// MigraineSeverityThreshold stands in for the full diagnostic criteria: an episode at
	// or above it, or with aura, makes its day a migraine day.
	MigraineSeverityThreshold = 5

	SuddenOnsetSeverity   = 8
	ProlongedAuraMinutes  = 60
	TriptanOveruseDays30  = 10
	NSAIDOveruseDays30    = 15
	NotRecorded           = "Not recorded"
	overuseReferenceDays  = 30
	percentDecimalPlaces  = 0
	averageDecimalPlaces  = 1
)

// ClassificationType is the headline pattern of the window
type ClassificationType string

const (
	ClassificationChronic          ClassificationType = "chronic"
	ClassificationEpisodic         ClassificationType = "episodic"
	ClassificationInsufficientData ClassificationType = "insufficient-data"
)

// Classification carries the pattern and the day counts behind it
type Classification struct {
	Type         ClassificationType `json:"type"`
	HeadacheDays int                `json:"headache_days"`
	MigraineDays int                `json:"migraine_days"`
}

// MigraineStats aggregates episode fields; every pointer is nil when no episode
// contributed a value
type MigraineStats struct {
	TotalEpisodes         int      `json:"total_episodes"`
	AvgSeverity           *float64 `json:"avg_severity"`
	MaxSeverity           *float64 `json:"max_severity"`
	AvgDurationMin        *float64 `json:"avg_duration_min"`
	OngoingCount          int      `json:"ongoing_count"`
	OngoingPercent        *float64 `json:"ongoing_percent"`
	AuraRatePercent       *float64 `json:"aura_rate_percent"`
	ImpairmentRatePercent *float64 `json:"impairment_rate_percent"`
}

// EpisodeDigest is the per-episode row shown in the summary, most recent first
type EpisodeDigest struct {
	ID          string   `json:"id"`
	StartedAt   int64    `json:"started_at"`
	Severity    *float64 `json:"severity"`
	DurationMin *int     `json:"duration_min"`
	Ongoing     bool     `json:"ongoing"`
	AuraPresent bool     `json:"aura_present"`
	MigraineDay bool     `json:"migraine_day"`
	Triggers    []string `json:"triggers"`
}

// RedFlag lists every matching warning reason for one episode
type RedFlag struct {
	EpisodeID string   `json:"episode_id"`
	StartedAt int64    `json:"started_at"`
	Reasons   []string `json:"reasons"`
}

// Count is one histogram bucket
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Histograms are frequency tables sorted by count, then label
type Histograms struct {
	Triggers         []Count `json:"triggers"`
	SleepRelation    []Count `json:"sleep_relation"`
	SensoryAvoidance []Count `json:"sensory_avoidance"`
	TimeOfDay        []Count `json:"time_of_day"`
	AbortiveTiming   []Count `json:"abortive_timing"`
	Relief           []Count `json:"relief"`
}

// MedicationSummary describes one tracked medication or supplement
type MedicationSummary struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Kind         model.MedicationKind `json:"kind"`
	Class        MedicationClass      `json:"class"`
	Dosage       string               `json:"dosage"`
	Schedule     []string             `json:"schedule"`
	DosesPerWeek int                  `json:"doses_per_week"`
	LogCount     int                  `json:"log_count"`
	LoggedDays   int                  `json:"logged_days"`
}

// OveruseRisk is the medication-overuse-headache screen
type OveruseRisk struct {
	TriptanDays  int      `json:"triptan_days"`
	NSAIDDays    int      `json:"nsaid_days"`
	TriptanPer30 int      `json:"triptan_per_30"`
	NSAIDPer30   int      `json:"nsaid_per_30"`
	HasRisk      bool     `json:"has_risk"`
	Reasons      []string `json:"reasons"`
}

// RangeStats is min/max/average over one blood pressure field
type RangeStats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

// PressureAverage is a systolic/diastolic average pair
type PressureAverage struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
	Readings  int     `json:"readings"`
}

// BloodPressureSummary summarises readings in the window
type BloodPressureSummary struct {
	ReadingCount   int              `json:"reading_count"`
	Systolic       RangeStats       `json:"systolic"`
	Diastolic      RangeStats       `json:"diastolic"`
	PulseAvg       *float64         `json:"pulse_avg"`
	MigraineDayAvg *PressureAverage `json:"migraine_day_avg"`
	OtherDayAvg    *PressureAverage `json:"other_day_avg"`
}

// MeditationSummary summarises meditation practice in the window
type MeditationSummary struct {
	Sessions     int      `json:"sessions"`
	PracticeDays int      `json:"practice_days"`
	TotalMinutes float64  `json:"total_minutes"`
	AvgMinutes   *float64 `json:"avg_minutes"`
}

// DoctorSummary is the full derived summary for one window
type DoctorSummary struct {
	RangeStart     int64                `json:"range_start"`
	RangeEnd       int64                `json:"range_end"`
	WindowDays     int                  `json:"window_days"`
	Classification Classification       `json:"classification"`
	MigraineStats  MigraineStats        `json:"migraine_stats"`
	Episodes       []EpisodeDigest      `json:"episodes"`
	RedFlags       []RedFlag            `json:"red_flags"`
	Histograms     Histograms           `json:"histograms"`
	Medications    []MedicationSummary  `json:"medications"`
	OveruseRisk    OveruseRisk          `json:"overuse_risk"`
	BloodPressure  BloodPressureSummary `json:"blood_pressure"`
	Meditation     MeditationSummary    `json:"meditation"`
}

// ComputeDoctorSummary derives the summary for the inclusive window [rangeStart, rangeEnd]
// (epoch ms). Records outside the window are ignored and no input is modified.
func ComputeDoctorSummary(
	episodes []model.Episode,
	bpReadings []model.BloodPressureReading,
	medications []model.Medication,
	schedules []model.DoseSchedule,
	medicationLogs []model.MedicationLog,
	meditationLogs []model.MeditationLog,
	rangeStart, rangeEnd int64,
) DoctorSummary {
	windowDays := WindowDays(rangeStart, rangeEnd)
	inWindow := func(ms int64) bool { return ms >= rangeStart && ms <= rangeEnd }

	eps := make([]normalize.Episode, 0, len(episodes))
	for _, raw := range episodes {
		if inWindow(raw.StartedAt) {
			eps = append(eps, normalize.ToEpisode(raw))
		}
	}
	sort.SliceStable(eps, func(i, j int) bool {
		if eps[i].StartedAt != eps[j].StartedAt {
			return eps[i].StartedAt > eps[j].StartedAt
		}
		return eps[i].ID < eps[j].ID
	})

	headacheDays := make(map[int64]bool)
	migraineDays := make(map[int64]bool)
	digests := make([]EpisodeDigest, 0, len(eps))
	for _, ep := range eps {
		key := normalize.ToDateKey(ep.StartedAt)
		headacheDays[key] = true
		isMigraine := IsMigraineEpisode(ep)
		if isMigraine {
			migraineDays[key] = true
		}
		digests = append(digests, EpisodeDigest{
			ID:          ep.ID,
			StartedAt:   ep.StartedAt,
			Severity:    ep.Severity,
			DurationMin: ep.DurationMin,
			Ongoing:     ep.Ongoing(),
			AuraPresent: ep.AuraPresent,
			MigraineDay: isMigraine,
			Triggers:    ep.Triggers,
		})
	}

	logs := make([]model.MedicationLog, 0, len(medicationLogs))
	for _, l := range medicationLogs {
		if inWindow(l.TakenAt) {
			logs = append(logs, l)
		}
	}

	return DoctorSummary{
		RangeStart:     rangeStart,
		RangeEnd:       rangeEnd,
		WindowDays:     windowDays,
		Classification: classify(len(eps), len(headacheDays), len(migraineDays)),
		MigraineStats:  computeStats(eps),
		Episodes:       digests,
		RedFlags:       detectRedFlags(eps),
		Histograms:     buildHistograms(eps),
		Medications:    summarizeMedications(medications, schedules, logs),
		OveruseRisk:    screenOveruse(logs, windowDays),
		BloodPressure:  summarizeBloodPressure(bpReadings, migraineDays, inWindow),
		Meditation:     summarizeMeditation(meditationLogs, inWindow),
	}
}

// WindowDays is the window length in whole days, at least 1
func WindowDays(rangeStart, rangeEnd int64) int {
	days := int(math.Ceil(float64(rangeEnd-rangeStart) / float64(normalize.DayMillis)))
	if days < 1 {
		return 1
	}
	return days
}

// IsMigraineEpisode applies the simplified migraine predicate
func IsMigraineEpisode(ep normalize.Episode) bool {
	return ep.AuraPresent || (ep.Severity != nil && *ep.Severity >= MigraineSeverityThreshold)
}

func classify(episodes, headacheDays, migraineDays int) Classification {
	c := Classification{HeadacheDays: headacheDays, MigraineDays: migraineDays}
	switch {
	case headacheDays >= ChronicHeadacheDays && migraineDays >= ChronicMigraineDays:
		c.Type = ClassificationChronic
	case episodes > 0:
		c.Type = ClassificationEpisodic
	default:
		c.Type = ClassificationInsufficientData
	}
	return c
}

func computeStats(eps []normalize.Episode) MigraineStats {
	stats := MigraineStats{TotalEpisodes: len(eps)}

	var severities, durations []float64
	var aura, impairedKnown, impaired int
	for _, ep := range eps {
		if ep.Severity != nil {
			severities = append(severities, *ep.Severity)
		}
		if ep.DurationMin != nil {
			durations = append(durations, float64(*ep.DurationMin))
		} else {
			stats.OngoingCount++
		}
		if ep.AuraPresent {
			aura++
		}
		if len(ep.FunctionalImpact) > 0 {
			impairedKnown++
			if isImpaired(ep.FunctionalImpact) {
				impaired++
			}
		}
	}

	stats.AvgSeverity = mean(severities, averageDecimalPlaces)
	stats.MaxSeverity = maxOf(severities)
	stats.AvgDurationMin = mean(durations, averageDecimalPlaces)
	stats.OngoingPercent = percent(stats.OngoingCount, len(eps))
	stats.AuraRatePercent = percent(aura, len(eps))
	stats.ImpairmentRatePercent = percent(impaired, impairedKnown)
	return stats
}

func isImpaired(impact []string) bool {
	for _, v := range impact {
		if !isNoImpact(v) {
			return true
		}
	}
	return false
}

func detectRedFlags(eps []normalize.Episode) []RedFlag {
	flags := []RedFlag{}
	for _, ep := range eps {
		if reasons := RedFlagReasons(ep); len(reasons) > 0 {
			flags = append(flags, RedFlag{
				EpisodeID: ep.ID,
				StartedAt: ep.StartedAt,
				Reasons:   reasons,
			})
		}
	}
	return flags
}

// RedFlagReasons evaluates the independent red-flag rules and returns every match
func RedFlagReasons(ep normalize.Episode) []string {
	var reasons []string

	if containsAny(ep.OnsetSpeed, SuddenOnsetKeywords) && ep.Severity != nil && *ep.Severity >= SuddenOnsetSeverity {
		reasons = append(reasons, fmt.Sprintf("Sudden onset with severity %s/10", formatNumber(*ep.Severity)))
	}

	if ep.AuraDurationMin != nil && *ep.AuraDurationMin > ProlongedAuraMinutes {
		reasons = append(reasons, fmt.Sprintf("Aura lasting %s min (over %d min)", formatNumber(*ep.AuraDurationMin), ProlongedAuraMinutes))
	}

	if anyContainsAny(ep.SleepRelation, WakeKeywords) && anyContainsAny(ep.Symptoms, VomitKeywords) {
		reasons = append(reasons, "Woke from sleep with vomiting")
	}

	var focal []string
	for _, s := range ep.Symptoms {
		if containsAny(s, FocalNeuroKeywords) {
			focal = append(focal, s)
		}
	}
	if len(focal) > 0 {
		reasons = append(reasons, "Focal neurological symptoms: "+strings.Join(focal, ", "))
	}

	return reasons
}

// TimeOfDayBucket maps a local hour to its display bucket
func TimeOfDayBucket(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return "Morning"
	case hour >= 12 && hour <= 16:
		return "Afternoon"
	case hour >= 17 && hour <= 21:
		return "Evening"
	default:
		return "Night"
	}
}

func buildHistograms(eps []normalize.Episode) Histograms {
	triggers := make(map[string]int)
	sleep := make(map[string]int)
	sensory := make(map[string]int)
	timeOfDay := make(map[string]int)
	timing := make(map[string]int)
	relief := make(map[string]int)

	for _, ep := range eps {
		countEach(triggers, ep.Triggers)
		countEach(sleep, ep.SleepRelation)
		countEach(sensory, ep.SensoryAvoidance)
		timeOfDay[TimeOfDayBucket(time.UnixMilli(ep.StartedAt).Hour())]++
		timing[orNotRecorded(ep.AbortiveTiming)]++
		relief[orNotRecorded(ep.Relief)]++
	}

	return Histograms{
		Triggers:         sortedCounts(triggers),
		SleepRelation:    sortedCounts(sleep),
		SensoryAvoidance: sortedCounts(sensory),
		TimeOfDay:        sortedCounts(timeOfDay),
		AbortiveTiming:   sortedCounts(timing),
		Relief:           sortedCounts(relief),
	}
}

// countEach counts each distinct value once per episode
func countEach(counts map[string]int, values []string) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		counts[v]++
	}
}

func orNotRecorded(s string) string {
	if s == "" {
		return NotRecorded
	}
	return s
}

func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

var weekdayAbbrev = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func summarizeMedications(meds []model.Medication, schedules []model.DoseSchedule, logs []model.MedicationLog) []MedicationSummary {
	out := make([]MedicationSummary, 0, len(meds))
	for _, med := range meds {
		s := MedicationSummary{
			ID:       med.ID,
			Name:     med.Name,
			Kind:     med.Kind,
			Class:    ClassifyMedication(med.Name),
			Dosage:   normalize.Text(med.Dosage),
			Schedule: []string{},
		}

		for _, raw := range schedules {
			if raw.ParentID != med.ID {
				continue
			}
			sched := normalize.ToSchedule(raw)
			days := sched.DaysOfWeek
			if len(days) == 0 || len(days) == 7 {
				s.Schedule = append(s.Schedule, sched.TimeOfDay+" daily")
				s.DosesPerWeek += 7
				continue
			}
			sort.Ints(days)
			names := make([]string, 0, len(days))
			for _, d := range days {
				names = append(names, weekdayAbbrev[d])
			}
			s.Schedule = append(s.Schedule, sched.TimeOfDay+" "+strings.Join(names, ", "))
			s.DosesPerWeek += len(days)
		}

		days := make(map[int64]bool)
		for _, l := range logs {
			if logMatches(l, med) {
				s.LogCount++
				days[normalize.ToDateKey(l.TakenAt)] = true
			}
		}
		s.LoggedDays = len(days)

		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func logMatches(l model.MedicationLog, med model.Medication) bool {
	if l.MedicationID != nil && *l.MedicationID != "" {
		return *l.MedicationID == med.ID
	}
	return strings.EqualFold(strings.TrimSpace(l.Name), strings.TrimSpace(med.Name))
}

func screenOveruse(logs []model.MedicationLog, windowDays int) OveruseRisk {
	triptanDays := make(map[int64]bool)
	nsaidDays := make(map[int64]bool)
	for _, l := range logs {
		switch ClassifyMedication(l.Name) {
		case ClassTriptan:
			triptanDays[normalize.ToDateKey(l.TakenAt)] = true
		case ClassNSAID:
			nsaidDays[normalize.ToDateKey(l.TakenAt)] = true
		}
	}

	risk := OveruseRisk{
		TriptanDays:  len(triptanDays),
		NSAIDDays:    len(nsaidDays),
		TriptanPer30: per30(len(triptanDays), windowDays),
		NSAIDPer30:   per30(len(nsaidDays), windowDays),
		Reasons:      []string{},
	}
	if risk.TriptanPer30 >= TriptanOveruseDays30 {
		risk.Reasons = append(risk.Reasons, fmt.Sprintf("Triptan use on %d days per 30 (threshold %d)", risk.TriptanPer30, TriptanOveruseDays30))
	}
	if risk.NSAIDPer30 >= NSAIDOveruseDays30 {
		risk.Reasons = append(risk.Reasons, fmt.Sprintf("NSAID use on %d days per 30 (threshold %d)", risk.NSAIDPer30, NSAIDOveruseDays30))
	}
	risk.HasRisk = len(risk.Reasons) > 0
	return risk
}

func per30(days, windowDays int) int {
	return int(math.Round(float64(days) / float64(windowDays) * overuseReferenceDays))
}

func summarizeBloodPressure(readings []model.BloodPressureReading, migraineDays map[int64]bool, inWindow func(int64) bool) BloodPressureSummary {
	var sys, dia, pulse []float64
	var onSys, onDia, offSys, offDia []float64
	count := 0

	for _, raw := range readings {
		if !inWindow(raw.MeasuredAt) {
			continue
		}
		count++
		r := normalize.ToBloodPressure(raw)
		if r.Systolic != nil {
			sys = append(sys, *r.Systolic)
		}
		if r.Diastolic != nil {
			dia = append(dia, *r.Diastolic)
		}
		if r.Pulse != nil {
			pulse = append(pulse, *r.Pulse)
		}
		if r.Systolic == nil || r.Diastolic == nil {
			continue
		}
		if migraineDays[normalize.ToDateKey(r.MeasuredAt)] {
			onSys = append(onSys, *r.Systolic)
			onDia = append(onDia, *r.Diastolic)
		} else {
			offSys = append(offSys, *r.Systolic)
			offDia = append(offDia, *r.Diastolic)
		}
	}

	summary := BloodPressureSummary{
		ReadingCount: count,
		Systolic:     rangeStats(sys),
		Diastolic:    rangeStats(dia),
		PulseAvg:     mean(pulse, 0),
	}
	if len(onSys) > 0 && len(offSys) > 0 {
		summary.MigraineDayAvg = &PressureAverage{
			Systolic:  *mean(onSys, averageDecimalPlaces),
			Diastolic: *mean(onDia, averageDecimalPlaces),
			Readings:  len(onSys),
		}
		summary.OtherDayAvg = &PressureAverage{
			Systolic:  *mean(offSys, averageDecimalPlaces),
			Diastolic: *mean(offDia, averageDecimalPlaces),
			Readings:  len(offSys),
		}
	}
	return summary
}

func rangeStats(values []float64) RangeStats {
	if len(values) == 0 {
		return RangeStats{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return RangeStats{Min: &lo, Max: &hi, Avg: mean(values, averageDecimalPlaces)}
}

func summarizeMeditation(logs []model.MeditationLog, inWindow func(int64) bool) MeditationSummary {
	summary := MeditationSummary{}
	days := make(map[int64]bool)
	var minutes []float64
	for _, l := range logs {
		if !inWindow(l.PracticedAt) {
			continue
		}
		summary.Sessions++
		days[normalize.ToDateKey(l.PracticedAt)] = true
		if d := normalize.SafeNumber(l.DurationMin); d != nil && *d >= 0 {
			minutes = append(minutes, *d)
			summary.TotalMinutes += *d
		}
	}
	summary.PracticeDays = len(days)
	summary.AvgMinutes = mean(minutes, averageDecimalPlaces)
	return summary
}

func mean(values []float64, places int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := roundTo(sum/float64(len(values)), places)
	return &m
}

func maxOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return &m
}

func percent(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	p := roundTo(float64(part)/float64(whole)*100, percentDecimalPlaces)
	return &p
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
