package migraine

import "strings"

// Keyword tables drive every text-matching rule in this package. Matching is a
// case-insensitive substring test, so "triptan" also covers every *triptan generic.

// TriptanKeywords classify a medication name as a triptan
var TriptanKeywords = []string{
	"triptan",
	"sumatriptan",
	"rizatriptan",
	"zolmitriptan",
	"eletriptan",
	"naratriptan",
	"almotriptan",
	"frovatriptan",
	"imitrex",
	"maxalt",
	"zomig",
	"relpax",
}

// NSAIDKeywords classify a medication name as an NSAID. "excedrin" is the combination
// product most often logged by brand name.
var NSAIDKeywords = []string{
	"naproxen",
	"ibuprofen",
	"diclofenac",
	"aspirin",
	"ketorolac",
	"celecoxib",
	"indomethacin",
	"meloxicam",
	"mefenamic",
	"advil",
	"aleve",
	"motrin",
	"nurofen",
	"excedrin",
}

// FocalNeuroKeywords flag symptoms that suggest a focal neurological deficit
var FocalNeuroKeywords = []string{
	"weakness",
	"numbness",
	"speech",
	"vision loss",
	"loss of vision",
	"double vision",
	"facial droop",
	"confusion",
	"seizure",
}

// VomitKeywords match vomiting symptoms
var VomitKeywords = []string{"vomit", "throwing up", "threw up"}

// WakeKeywords match a sleep relation meaning the pain woke the user
var WakeKeywords = []string{"woke", "waking", "from sleep"}

// SuddenOnsetKeywords match an onset speed describing a thunderclap start
var SuddenOnsetKeywords = []string{"sudden", "thunderclap", "instant"}

// NoImpactValues are functional-impact entries that mean the user was not impaired
var NoImpactValues = []string{"none", "no impact", "not impaired", "normal"}

// MedicationClass is the heuristic class of a medication name
type MedicationClass string

const (
	ClassTriptan MedicationClass = "triptan"
	ClassNSAID   MedicationClass = "nsaid"
	ClassOther   MedicationClass = "other"
)

// ClassifyMedication classifies a medication name. Triptans win over NSAIDs.
func ClassifyMedication(name string) MedicationClass {
	switch {
	case containsAny(name, TriptanKeywords):
		return ClassTriptan
	case containsAny(name, NSAIDKeywords):
		return ClassNSAID
	default:
		return ClassOther
	}
}

func containsAny(text string, keywords []string) bool {
	_, ok := firstMatch(text, keywords)
	return ok
}

func firstMatch(text string, keywords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

func anyContainsAny(items []string, keywords []string) bool {
	for _, item := range items {
		if containsAny(item, keywords) {
			return true
		}
	}
	return false
}

func isNoImpact(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, v := range NoImpactValues {
		if lower == v {
			return true
		}
	}
	return false
}
