package migraine

import (
	"fmt"
	"strings"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
)

// Placeholder is printed wherever a value has no sample
const Placeholder = "—"

const topTriggerCount = 5

// FormatDoctorSummary renders the summary as a fixed-section plain-text report
func FormatDoctorSummary(s DoctorSummary) string {
	var b strings.Builder

	start := time.UnixMilli(s.RangeStart).Format("2006-01-02")
	end := time.UnixMilli(s.RangeEnd).Format("2006-01-02")
	b.WriteString("MIGRAINE SUMMARY FOR CLINICIAN\n")
	fmt.Fprintf(&b, "Period: %s to %s (%d days)\n\n", start, end, s.WindowDays)

	b.WriteString("CLASSIFICATION\n")
	fmt.Fprintf(&b, "Pattern: %s\n", classificationLabel(s.Classification.Type))
	fmt.Fprintf(&b, "Headache days: %d\n", s.Classification.HeadacheDays)
	fmt.Fprintf(&b, "Migraine days: %d\n\n", s.Classification.MigraineDays)

	st := s.MigraineStats
	b.WriteString("EPISODES\n")
	fmt.Fprintf(&b, "Total episodes: %d\n", st.TotalEpisodes)
	fmt.Fprintf(&b, "Average severity: %s\n", withSuffix(st.AvgSeverity, "/10"))
	fmt.Fprintf(&b, "Maximum severity: %s\n", withSuffix(st.MaxSeverity, "/10"))
	fmt.Fprintf(&b, "Average duration: %s\n", minutesOrPlaceholder(st.AvgDurationMin))
	fmt.Fprintf(&b, "Ongoing or no end time: %d (%s)\n", st.OngoingCount, withSuffix(st.OngoingPercent, "%"))
	fmt.Fprintf(&b, "With aura: %s\n", withSuffix(st.AuraRatePercent, "%"))
	fmt.Fprintf(&b, "With functional impairment: %s\n\n", withSuffix(st.ImpairmentRatePercent, "%"))

	b.WriteString("TOP TRIGGERS\n")
	if len(s.Histograms.Triggers) == 0 {
		b.WriteString(Placeholder + "\n")
	}
	for i, c := range s.Histograms.Triggers {
		if i == topTriggerCount {
			break
		}
		fmt.Fprintf(&b, "- %s: %d\n", c.Label, c.Count)
	}
	b.WriteString("\n")

	b.WriteString("TIMING\n")
	b.WriteString(countLine("Time of day", s.Histograms.TimeOfDay))
	b.WriteString(countLine("Abortive timing", s.Histograms.AbortiveTiming))
	b.WriteString(countLine("Relief", s.Histograms.Relief))
	b.WriteString("\n")

	b.WriteString("MEDICATIONS\n")
	if len(s.Medications) == 0 {
		b.WriteString(Placeholder + "\n")
	}
	for _, m := range s.Medications {
		dosage := m.Dosage
		if dosage == "" {
			dosage = Placeholder
		}
		schedule := Placeholder
		if len(m.Schedule) > 0 {
			schedule = strings.Join(m.Schedule, "; ")
		}
		fmt.Fprintf(&b, "- %s (%s, %s) %s | schedule: %s | logged on %d days\n",
			m.Name, m.Kind, m.Class, dosage, schedule, m.LoggedDays)
	}
	o := s.OveruseRisk
	fmt.Fprintf(&b, "Triptan days: %d (%d per 30 days)\n", o.TriptanDays, o.TriptanPer30)
	fmt.Fprintf(&b, "NSAID days: %d (%d per 30 days)\n", o.NSAIDDays, o.NSAIDPer30)
	if o.HasRisk {
		b.WriteString("Medication overuse risk: YES\n")
		for _, r := range o.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	} else {
		b.WriteString("Medication overuse risk: no\n")
	}
	b.WriteString("\n")

	bp := s.BloodPressure
	b.WriteString("BLOOD PRESSURE\n")
	fmt.Fprintf(&b, "Readings: %d\n", bp.ReadingCount)
	fmt.Fprintf(&b, "Systolic: %s\n", rangeLine(bp.Systolic))
	fmt.Fprintf(&b, "Diastolic: %s\n", rangeLine(bp.Diastolic))
	fmt.Fprintf(&b, "Pulse average: %s\n", withSuffix(bp.PulseAvg, ""))
	fmt.Fprintf(&b, "Migraine days average: %s\n", pressureLine(bp.MigraineDayAvg))
	fmt.Fprintf(&b, "Other days average: %s\n\n", pressureLine(bp.OtherDayAvg))

	med := s.Meditation
	b.WriteString("MEDITATION\n")
	fmt.Fprintf(&b, "Sessions: %d on %d days\n", med.Sessions, med.PracticeDays)
	fmt.Fprintf(&b, "Total: %s\n", normalize.FormatMinutes(med.TotalMinutes))
	fmt.Fprintf(&b, "Average session: %s\n\n", minutesOrPlaceholder(med.AvgMinutes))

	b.WriteString("RED FLAGS\n")
	if len(s.RedFlags) == 0 {
		b.WriteString("None detected\n")
	}
	for _, f := range s.RedFlags {
		fmt.Fprintf(&b, "- %s: %s\n", time.UnixMilli(f.StartedAt).Format("2006-01-02 15:04"), strings.Join(f.Reasons, "; "))
	}

	return b.String()
}

func classificationLabel(t ClassificationType) string {
	switch t {
	case ClassificationChronic:
		return "Chronic migraine pattern (15+ headache days, 8+ migraine days)"
	case ClassificationEpisodic:
		return "Episodic migraine"
	default:
		return "Insufficient data"
	}
}

func withSuffix(v *float64, suffix string) string {
	if v == nil {
		return Placeholder
	}
	return formatNumber(*v) + suffix
}

func minutesOrPlaceholder(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return normalize.FormatMinutes(*v)
}

func rangeLine(r RangeStats) string {
	if r.Avg == nil {
		return Placeholder
	}
	return fmt.Sprintf("avg %s (min %s, max %s)", formatNumber(*r.Avg), formatNumber(*r.Min), formatNumber(*r.Max))
}

func pressureLine(p *PressureAverage) string {
	if p == nil {
		return Placeholder
	}
	return fmt.Sprintf("%s/%s over %d readings", formatNumber(p.Systolic), formatNumber(p.Diastolic), p.Readings)
}

func countLine(label string, counts []Count) string {
	if len(counts) == 0 {
		return label + ": " + Placeholder + "\n"
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", c.Label, c.Count))
	}
	return label + ": " + strings.Join(parts, ", ") + "\n"
}
