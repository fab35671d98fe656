// Package report builds the clinical migraine analysis and the long-form text report
// exported for a physician. It shares only the normalizer with package migraine; the
// headline status here is always measured over the trailing 30 days from the clock.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

const (
	trailingDays          = 30
	chronicDaysThreshold  = 15
	atRiskDaysThreshold   = 10
	rescueOveruseLimit    = 10
	maxTriggerRows        = 10
	poorSleepKeyword      = "poor"
	successReliefGood     = "good"
	successReliefComplete = "complete"
)

// ChronicStatus is the three-tier headline classification
type ChronicStatus string

const (
	StatusChronic  ChronicStatus = "chronic"
	StatusAtRisk   ChronicStatus = "at-risk"
	StatusEpisodic ChronicStatus = "episodic"
)

// TriggerCorrelation is one row of the trigger table
type TriggerCorrelation struct {
	Trigger     string   `json:"trigger"`
	Frequency   int      `json:"frequency"`
	AvgSeverity *float64 `json:"avg_severity"`
}

// MedicationEffectiveness summarises how one abortive medication performed
type MedicationEffectiveness struct {
	Name               string   `json:"name"`
	Uses               int      `json:"uses"`
	Successes          int      `json:"successes"`
	SuccessRatePercent float64  `json:"success_rate_percent"`
	AvgDelayMin        *float64 `json:"avg_delay_min"`
	AvgSeverityBefore  *float64 `json:"avg_severity_before"`
	// AvgSeverityAfter is estimated as half the starting severity on success, unchanged otherwise
	AvgSeverityAfter *float64 `json:"avg_severity_after"`
}

// SleepPatterns relates sleep to episodes
type SleepPatterns struct {
	AvgSleepHours    *float64 `json:"avg_sleep_hours"`
	PoorSleepPercent *float64 `json:"poor_sleep_percent"`
}

// TimePatterns holds the modal onset hour and weekday
type TimePatterns struct {
	PeakHour    *int          `json:"peak_hour"`
	PeakWeekday *time.Weekday `json:"peak_weekday"`
}

// OveruseAssessment counts rescue medication use in the trailing 30 days
type OveruseAssessment struct {
	RescueUsesLast30 int  `json:"rescue_uses_last_30"`
	AtRisk           bool `json:"at_risk"`
}

// FunctionalImpact describes lost function during episodes
type FunctionalImpact struct {
	CouldNotWorkPercent *float64 `json:"could_not_work_percent"`
	AvgBedBoundHours    *float64 `json:"avg_bed_bound_hours"`
}

// MigraineAnalysis is the structured clinical analysis behind the medical report
type MigraineAnalysis struct {
	GeneratedAt        int64                     `json:"generated_at"`
	TotalEpisodes      int                       `json:"total_episodes"`
	HeadacheDaysLast30 int                       `json:"headache_days_last_30"`
	ChronicStatus      ChronicStatus             `json:"chronic_status"`
	AvgSeverity        *float64                  `json:"avg_severity"`
	AvgDurationMin     *float64                  `json:"avg_duration_min"`
	ICHD3Percent       *float64                  `json:"ichd3_percent"`
	MIDASScore         *float64                  `json:"midas_score"`
	MIDASGrade         string                    `json:"midas_grade"`
	Triggers           []TriggerCorrelation      `json:"triggers"`
	Medications        []MedicationEffectiveness `json:"medications"`
	Sleep              SleepPatterns             `json:"sleep"`
	Timing             TimePatterns              `json:"timing"`
	Overuse            OveruseAssessment         `json:"overuse"`
	FunctionalImpact   FunctionalImpact          `json:"functional_impact"`
}

// AnalyzeMigraineData analyzes episodes against the real clock
func AnalyzeMigraineData(episodes []model.Episode) MigraineAnalysis {
	return AnalyzeMigraineDataAt(episodes, time.Now())
}

// AnalyzeMigraineDataAt analyzes episodes with an explicit "now". The trailing-30-day
// measures ignore any caller window; everything else covers the episodes as given.
func AnalyzeMigraineDataAt(episodes []model.Episode, now time.Time) MigraineAnalysis {
	if len(episodes) == 0 {
		return emptyAnalysis(now)
	}

	eps := normalize.ToEpisodes(episodes)
	trailingStart := now.AddDate(0, 0, -trailingDays).UnixMilli()
	nowMs := now.UnixMilli()
	inTrailing := func(ms int64) bool { return ms >= trailingStart && ms <= nowMs }

	headacheDays := make(map[int64]bool)
	rescueUses := 0
	for _, ep := range eps {
		if !inTrailing(ep.StartedAt) {
			continue
		}
		headacheDays[normalize.ToDateKey(ep.StartedAt)] = true
		if ep.Medication != nil {
			rescueUses++
		}
	}

	var severities, durations []float64
	ichd := 0
	for _, ep := range eps {
		if ep.Severity != nil {
			severities = append(severities, *ep.Severity)
		}
		if ep.DurationMin != nil {
			durations = append(durations, float64(*ep.DurationMin))
		}
		if ep.MeetsICHD3Criteria {
			ichd++
		}
	}

	midasScore, midasGrade := latestMIDAS(eps)

	return MigraineAnalysis{
		GeneratedAt:        nowMs,
		TotalEpisodes:      len(eps),
		HeadacheDaysLast30: len(headacheDays),
		ChronicStatus:      chronicStatus(len(headacheDays)),
		AvgSeverity:        average(severities, 1),
		AvgDurationMin:     average(durations, 0),
		ICHD3Percent:       percentOf(ichd, len(eps)),
		MIDASScore:         midasScore,
		MIDASGrade:         midasGrade,
		Triggers:           correlateTriggers(eps),
		Medications:        medicationEffectiveness(eps),
		Sleep:              sleepPatterns(eps),
		Timing:             timePatterns(eps),
		Overuse: OveruseAssessment{
			RescueUsesLast30: rescueUses,
			AtRisk:           rescueUses > rescueOveruseLimit,
		},
		FunctionalImpact: functionalImpact(eps),
	}
}

func emptyAnalysis(now time.Time) MigraineAnalysis {
	return MigraineAnalysis{
		GeneratedAt:   now.UnixMilli(),
		ChronicStatus: StatusEpisodic,
		Triggers:      []TriggerCorrelation{},
		Medications:   []MedicationEffectiveness{},
	}
}

func chronicStatus(headacheDays int) ChronicStatus {
	switch {
	case headacheDays >= chronicDaysThreshold:
		return StatusChronic
	case headacheDays >= atRiskDaysThreshold:
		return StatusAtRisk
	default:
		return StatusEpisodic
	}
}

func latestMIDAS(eps []normalize.Episode) (*float64, string) {
	var latest *normalize.Episode
	for i := range eps {
		ep := &eps[i]
		if ep.MIDASScore == nil && ep.MIDASGrade == "" {
			continue
		}
		if latest == nil || ep.StartedAt > latest.StartedAt {
			latest = ep
		}
	}
	if latest == nil {
		return nil, ""
	}
	return latest.MIDASScore, latest.MIDASGrade
}

func correlateTriggers(eps []normalize.Episode) []TriggerCorrelation {
	type acc struct {
		frequency  int
		severities []float64
	}
	byTrigger := make(map[string]*acc)

	for _, ep := range eps {
		seen := make(map[string]bool)
		for _, trig := range append(append([]string{}, ep.Triggers...), ep.FoodTriggers...) {
			if seen[trig] {
				continue
			}
			seen[trig] = true
			a, ok := byTrigger[trig]
			if !ok {
				a = &acc{}
				byTrigger[trig] = a
			}
			a.frequency++
			if ep.Severity != nil {
				a.severities = append(a.severities, *ep.Severity)
			}
		}
	}

	out := make([]TriggerCorrelation, 0, len(byTrigger))
	for trig, a := range byTrigger {
		out = append(out, TriggerCorrelation{
			Trigger:     trig,
			Frequency:   a.frequency,
			AvgSeverity: average(a.severities, 1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Trigger < out[j].Trigger
	})
	if len(out) > maxTriggerRows {
		out = out[:maxTriggerRows]
	}
	return out
}

func medicationEffectiveness(eps []normalize.Episode) []MedicationEffectiveness {
	type acc struct {
		uses, successes       int
		delays, before, after []float64
	}
	byName := make(map[string]*acc)
	var order []string

	for _, ep := range eps {
		if ep.Medication == nil {
			continue
		}
		name := ep.Medication.Name
		a, ok := byName[name]
		if !ok {
			a = &acc{}
			byName[name] = a
			order = append(order, name)
		}
		a.uses++
		success := isSuccessfulRelief(ep.Medication.ReliefAt2h)
		if success {
			a.successes++
		}
		if ep.Medication.TakenAt != nil && *ep.Medication.TakenAt >= ep.StartedAt {
			a.delays = append(a.delays, float64(*ep.Medication.TakenAt-ep.StartedAt)/60000)
		}
		if ep.Severity != nil {
			a.before = append(a.before, *ep.Severity)
			if success {
				a.after = append(a.after, *ep.Severity/2)
			} else {
				a.after = append(a.after, *ep.Severity)
			}
		}
	}

	out := make([]MedicationEffectiveness, 0, len(order))
	for _, name := range order {
		a := byName[name]
		out = append(out, MedicationEffectiveness{
			Name:               name,
			Uses:               a.uses,
			Successes:          a.successes,
			SuccessRatePercent: math.Round(float64(a.successes) / float64(a.uses) * 100),
			AvgDelayMin:        average(a.delays, 0),
			AvgSeverityBefore:  average(a.before, 1),
			AvgSeverityAfter:   average(a.after, 1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SuccessRatePercent > out[j].SuccessRatePercent
	})
	return out
}

func isSuccessfulRelief(relief string) bool {
	lower := strings.ToLower(relief)
	return strings.Contains(lower, successReliefGood) || strings.Contains(lower, successReliefComplete)
}

func sleepPatterns(eps []normalize.Episode) SleepPatterns {
	var hours []float64
	poor := 0
	for _, ep := range eps {
		if ep.SleepHours != nil {
			hours = append(hours, *ep.SleepHours)
		}
		if strings.Contains(strings.ToLower(ep.SleepQuality), poorSleepKeyword) {
			poor++
		}
	}
	return SleepPatterns{
		AvgSleepHours:    average(hours, 1),
		PoorSleepPercent: percentOf(poor, len(eps)),
	}
}

func timePatterns(eps []normalize.Episode) TimePatterns {
	if len(eps) == 0 {
		return TimePatterns{}
	}
	var hours [24]int
	var days [7]int
	for _, ep := range eps {
		t := time.UnixMilli(ep.StartedAt)
		hours[t.Hour()]++
		days[t.Weekday()]++
	}
	hour := modeIndex(hours[:])
	day := time.Weekday(modeIndex(days[:]))
	return TimePatterns{PeakHour: &hour, PeakWeekday: &day}
}

// modeIndex returns the index with the highest count; ties go to the lowest index
func modeIndex(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func functionalImpact(eps []normalize.Episode) FunctionalImpact {
	couldNotWork := 0
	var bedBound []float64
	for _, ep := range eps {
		if ep.CouldNotWork {
			couldNotWork++
		}
		if ep.BedBoundHours != nil {
			bedBound = append(bedBound, *ep.BedBoundHours)
		}
	}
	return FunctionalImpact{
		CouldNotWorkPercent: percentOf(couldNotWork, len(eps)),
		AvgBedBoundHours:    average(bedBound, 1),
	}
}

func average(values []float64, places int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	scale := math.Pow(10, float64(places))
	avg := math.Round(sum/float64(len(values))*scale) / scale
	return &avg
}

func percentOf(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	p := math.Round(float64(part) / float64(whole) * 100)
	return &p
}
