package adherence

import (
	"sort"
	"strings"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
)

// ItemAdherence is the streak and adherence ratio of one medication or supplement
type ItemAdherence struct {
	ItemID       string               `json:"item_id"`
	Name         string               `json:"name"`
	Kind         model.MedicationKind `json:"kind"`
	StartedAt    int64                `json:"started_at"`
	StreakDays   int                  `json:"streak_days"`
	AdherencePct float64              `json:"adherence_pct"`
	LastTakenAt  *int64               `json:"last_taken_at"`
}

// ComputeItemAdherence derives per-item adherence for active items. Logs are matched by
// medication id, falling back to a case-insensitive name match for unlinked logs.
func ComputeItemAdherence(items []model.Medication, logs []model.MedicationLog, today time.Time) []ItemAdherence {
	out := make([]ItemAdherence, 0, len(items))
	for _, item := range items {
		if !item.Active {
			continue
		}

		var events []int64
		var last *int64
		for _, l := range logs {
			if !logBelongsTo(l, item) {
				continue
			}
			events = append(events, l.TakenAt)
			if last == nil || l.TakenAt > *last {
				taken := l.TakenAt
				last = &taken
			}
		}

		out = append(out, ItemAdherence{
			ItemID:       item.ID,
			Name:         item.Name,
			Kind:         item.Kind,
			StartedAt:    item.StartedAt,
			StreakDays:   Streak(events, today),
			AdherencePct: AdherenceRatio(events, item.StartedAt, today),
			LastTakenAt:  last,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func logBelongsTo(l model.MedicationLog, item model.Medication) bool {
	if l.MedicationID != nil && *l.MedicationID != "" {
		return *l.MedicationID == item.ID
	}
	return l.Kind == item.Kind && strings.EqualFold(strings.TrimSpace(l.Name), strings.TrimSpace(item.Name))
}
