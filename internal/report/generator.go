package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

const (
	recentEpisodeCount = 10
	dateLayout         = "Jan 2, 2006"
	dateTimeLayout     = "Jan 2, 2006 15:04"
	ruler              = "========================================"
	notRecorded        = "not recorded"

	poorSleepRecommendPercent = 50
	frequentTriggerCount      = 3
	weakMedicationMinUses     = 3
	weakMedicationRate        = 50
	disablingMIDASScore       = 11
	workLossRecommendPercent  = 50
)

// DateRange is the report window chosen by the caller
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Section renders one block of the medical report; an empty string omits the block
type Section func(a MigraineAnalysis, recent []normalize.Episode, r DateRange) string

// Sections is the ordered list of blocks making up the report
var Sections = []Section{
	HeaderSection,
	FrequencySection,
	ICHD3Section,
	MIDASSection,
	TriggerSection,
	MedicationSection,
	SleepSection,
	TimingSection,
	OveruseSection,
	FunctionalImpactSection,
	RecentEpisodesSection,
	RecommendationsSection,
	DisclaimerSection,
}

// GenerateMedicalReport assembles the plain-text clinical report from the analysis and the
// ten most recent episodes. It performs no derivation beyond choosing text blocks.
func GenerateMedicalReport(a MigraineAnalysis, episodes []model.Episode, r DateRange) string {
	recent := RecentEpisodes(episodes, recentEpisodeCount)

	blocks := make([]string, 0, len(Sections))
	for _, section := range Sections {
		if block := section(a, recent, r); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n")
}

// RecentEpisodes returns the n most recent episodes in canonical form, newest first
func RecentEpisodes(episodes []model.Episode, n int) []normalize.Episode {
	eps := normalize.ToEpisodes(episodes)
	sort.SliceStable(eps, func(i, j int) bool {
		return eps[i].StartedAt > eps[j].StartedAt
	})
	if len(eps) > n {
		eps = eps[:n]
	}
	return eps
}

// HeaderSection prints the title, report period and generation time
func HeaderSection(a MigraineAnalysis, _ []normalize.Episode, r DateRange) string {
	var b strings.Builder
	b.WriteString(ruler + "\n")
	b.WriteString("MIGRAINE CLINICAL REPORT\n")
	b.WriteString(ruler + "\n")
	fmt.Fprintf(&b, "Report period: %s - %s\n", r.Start.Format(dateLayout), r.End.Format(dateLayout))
	fmt.Fprintf(&b, "Generated: %s\n", time.UnixMilli(a.GeneratedAt).Format(dateTimeLayout))
	return b.String()
}

// FrequencySection prints headache frequency and the chronic status verdict
func FrequencySection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	b.WriteString("HEADACHE FREQUENCY\n")
	fmt.Fprintf(&b, "Episodes in report period: %d\n", a.TotalEpisodes)
	fmt.Fprintf(&b, "Headache days in the last 30 days: %d\n", a.HeadacheDaysLast30)
	fmt.Fprintf(&b, "Average severity: %s\n", scoreOrNotRecorded(a.AvgSeverity, "/10"))
	fmt.Fprintf(&b, "Average duration: %s\n", minutesOrNotRecorded(a.AvgDurationMin))

	switch a.ChronicStatus {
	case StatusChronic:
		b.WriteString("Classification: CHRONIC MIGRAINE PATTERN\n")
		fmt.Fprintf(&b, "The patient reported headache on %d of the last 30 days, which meets the "+
			"frequency threshold for chronic migraine (15 or more headache days per month). "+
			"Preventive treatment should be considered.\n", a.HeadacheDaysLast30)
	case StatusAtRisk:
		b.WriteString("Classification: HIGH-FREQUENCY EPISODIC (AT RISK)\n")
		fmt.Fprintf(&b, "The patient reported headache on %d of the last 30 days. This is below the "+
			"chronic threshold but indicates a risk of progression to chronic migraine.\n", a.HeadacheDaysLast30)
	default:
		b.WriteString("Classification: EPISODIC MIGRAINE\n")
		fmt.Fprintf(&b, "The patient reported headache on %d of the last 30 days, consistent with "+
			"an episodic pattern.\n", a.HeadacheDaysLast30)
	}
	return b.String()
}

// ICHD3Section prints the share of episodes meeting ICHD-3 criteria
func ICHD3Section(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	if a.ICHD3Percent == nil {
		return ""
	}
	return fmt.Sprintf("ICHD-3 CRITERIA\n%s of episodes were marked as meeting ICHD-3 migraine criteria.\n",
		formatPercent(*a.ICHD3Percent))
}

// MIDASSection prints the latest MIDAS score and grade
func MIDASSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	if a.MIDASScore == nil && a.MIDASGrade == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("DISABILITY (MIDAS)\n")
	if a.MIDASScore != nil {
		fmt.Fprintf(&b, "Most recent MIDAS score: %s\n", formatNumber(*a.MIDASScore))
	}
	if a.MIDASGrade != "" {
		fmt.Fprintf(&b, "MIDAS grade: %s\n", a.MIDASGrade)
	}
	return b.String()
}

// TriggerSection lists the most frequent triggers
func TriggerSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	b.WriteString("TRIGGERS\n")
	if len(a.Triggers) == 0 {
		b.WriteString("No triggers recorded.\n")
		return b.String()
	}
	for i, t := range a.Triggers {
		fmt.Fprintf(&b, "%d. %s: %d episodes, average severity %s\n",
			i+1, t.Trigger, t.Frequency, scoreOrNotRecorded(t.AvgSeverity, "/10"))
	}
	return b.String()
}

// MedicationSection prints per-medication effectiveness
func MedicationSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	b.WriteString("ACUTE MEDICATION EFFECTIVENESS\n")
	if len(a.Medications) == 0 {
		b.WriteString("No acute medication use recorded.\n")
		return b.String()
	}
	for _, m := range a.Medications {
		fmt.Fprintf(&b, "- %s: used %d times, effective at 2 hours in %s (%d/%d)\n",
			m.Name, m.Uses, formatPercent(m.SuccessRatePercent), m.Successes, m.Uses)
		if m.AvgDelayMin != nil {
			fmt.Fprintf(&b, "  Average time from onset to dose: %s\n", normalize.FormatMinutes(*m.AvgDelayMin))
		}
		if m.AvgSeverityBefore != nil && m.AvgSeverityAfter != nil {
			fmt.Fprintf(&b, "  Estimated severity before/after: %s -> %s\n",
				formatNumber(*m.AvgSeverityBefore), formatNumber(*m.AvgSeverityAfter))
		}
	}
	return b.String()
}

// SleepSection prints how episodes relate to sleep
func SleepSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	if a.Sleep.AvgSleepHours == nil && a.Sleep.PoorSleepPercent == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("SLEEP\n")
	if a.Sleep.AvgSleepHours != nil {
		fmt.Fprintf(&b, "Average sleep before episodes: %s hours\n", formatNumber(*a.Sleep.AvgSleepHours))
	}
	if a.Sleep.PoorSleepPercent != nil {
		fmt.Fprintf(&b, "Episodes following poor sleep: %s\n", formatPercent(*a.Sleep.PoorSleepPercent))
	}
	return b.String()
}

// TimingSection prints the peak onset hour and weekday
func TimingSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	if a.Timing.PeakHour == nil || a.Timing.PeakWeekday == nil {
		return ""
	}
	return fmt.Sprintf("TIMING\nMost common onset hour: %02d:00\nMost common day: %s\n",
		*a.Timing.PeakHour, a.Timing.PeakWeekday.String())
}

// OveruseSection flags possible medication overuse headache
func OveruseSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	b.WriteString("MEDICATION OVERUSE\n")
	fmt.Fprintf(&b, "Rescue medication uses in the last 30 days: %d\n", a.Overuse.RescueUsesLast30)
	if a.Overuse.AtRisk {
		fmt.Fprintf(&b, "WARNING: more than %d uses in 30 days. Risk of medication-overuse headache.\n", rescueOveruseLimit)
	} else {
		b.WriteString("Within recommended limits.\n")
	}
	return b.String()
}

// FunctionalImpactSection prints the functional impact breakdown
func FunctionalImpactSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	fi := a.FunctionalImpact
	if fi.CouldNotWorkPercent == nil && fi.AvgBedBoundHours == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("FUNCTIONAL IMPACT\n")
	if fi.CouldNotWorkPercent != nil {
		fmt.Fprintf(&b, "Unable to work or study: %s of episodes\n", formatPercent(*fi.CouldNotWorkPercent))
	}
	if fi.AvgBedBoundHours != nil {
		fmt.Fprintf(&b, "Average time bed-bound: %s hours\n", formatNumber(*fi.AvgBedBoundHours))
	}
	return b.String()
}

// RecentEpisodesSection lists the most recent episodes
func RecentEpisodesSection(_ MigraineAnalysis, recent []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RECENT EPISODES (last %d)\n", recentEpisodeCount)
	if len(recent) == 0 {
		b.WriteString("No episodes recorded.\n")
		return b.String()
	}
	for _, ep := range recent {
		duration := "ongoing"
		if ep.DurationMin != nil {
			duration = normalize.FormatMinutes(float64(*ep.DurationMin))
		}
		aura := ""
		if ep.AuraPresent {
			aura = ", with aura"
		}
		fmt.Fprintf(&b, "- %s: severity %s, %s%s\n",
			time.UnixMilli(ep.StartedAt).Format(dateTimeLayout), scoreOrNotRecorded(ep.Severity, "/10"), duration, aura)
		if len(ep.Triggers) > 0 {
			fmt.Fprintf(&b, "  Triggers: %s\n", strings.Join(ep.Triggers, ", "))
		}
		if ep.Medication != nil {
			relief := ep.Medication.ReliefAt2h
			if relief == "" {
				relief = notRecorded
			}
			fmt.Fprintf(&b, "  Medication: %s (relief at 2h: %s)\n", ep.Medication.Name, relief)
		}
	}
	return b.String()
}

// Recommendations returns the triggered recommendation lines in priority order
func Recommendations(a MigraineAnalysis) []string {
	var recs []string

	switch a.ChronicStatus {
	case StatusChronic:
		recs = append(recs, "Discuss preventive treatment: headache frequency meets the chronic migraine threshold.")
	case StatusAtRisk:
		recs = append(recs, "Monitor headache frequency closely and consider preventive treatment to avoid progression to chronic migraine.")
	}
	if a.Overuse.AtRisk {
		recs = append(recs, "Review acute medication use: frequent rescue doses increase the risk of medication-overuse headache.")
	}
	if (a.MIDASScore != nil && *a.MIDASScore >= disablingMIDASScore) || isSevereMIDASGrade(a.MIDASGrade) {
		recs = append(recs, "MIDAS indicates moderate to severe disability; a specialist referral may be appropriate.")
	}
	for _, m := range a.Medications {
		if m.Uses >= weakMedicationMinUses && m.SuccessRatePercent < weakMedicationRate {
			recs = append(recs, fmt.Sprintf("Reassess %s: effective in only %s of uses.", m.Name, formatPercent(m.SuccessRatePercent)))
		}
	}
	if len(a.Triggers) > 0 && a.Triggers[0].Frequency >= frequentTriggerCount {
		recs = append(recs, fmt.Sprintf("Address the most frequent trigger: %s.", a.Triggers[0].Trigger))
	}
	if a.Sleep.PoorSleepPercent != nil && *a.Sleep.PoorSleepPercent >= poorSleepRecommendPercent {
		recs = append(recs, "Poor sleep precedes many episodes; sleep hygiene review is recommended.")
	}
	if a.FunctionalImpact.CouldNotWorkPercent != nil && *a.FunctionalImpact.CouldNotWorkPercent >= workLossRecommendPercent {
		recs = append(recs, "Episodes frequently prevent work; discuss workplace accommodations and treatment goals.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Continue current management and keep logging episodes.")
	}
	return recs
}

// RecommendationsSection prints the clinical recommendations
func RecommendationsSection(a MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	var b strings.Builder
	b.WriteString("RECOMMENDATIONS\n")
	for i, rec := range Recommendations(a) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// DisclaimerSection closes the report with the medical disclaimer
func DisclaimerSection(_ MigraineAnalysis, _ []normalize.Episode, _ DateRange) string {
	return "This report is generated from patient-logged data and is not a diagnosis. " +
		"Please interpret it alongside a clinical assessment.\n"
}

func isSevereMIDASGrade(grade string) bool {
	g := strings.ToUpper(strings.TrimSpace(grade))
	return strings.HasSuffix(g, "III") || strings.HasSuffix(g, "IV")
}

func scoreOrNotRecorded(v *float64, suffix string) string {
	if v == nil {
		return notRecorded
	}
	return formatNumber(*v) + suffix
}

func minutesOrNotRecorded(v *float64) string {
	if v == nil {
		return notRecorded
	}
	return normalize.FormatMinutes(*v)
}

func formatPercent(v float64) string {
	return formatNumber(v) + "%"
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
