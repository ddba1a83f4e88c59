// Package classify derives dosing-relevant attributes from the free-text
// fields of an imported medicine record via keyword matching. Classification
// runs once per record at import time; the resulting attributes drive the
// timing recommender's precedence chain (sedation > stimulant > gastric >
// meal timing > default), so the match order here must not be reshuffled.
package classify

import (
	"strings"

	"dose-planner/internal/models"
)

// maxFieldLen bounds stored free-text fields.
const maxFieldLen = 500

// Attributes is the classification result for one import record.
type Attributes struct {
	Name        string
	GenericName string
	Company     string
	ClassName   string
	Ingredients string
	Effect      string
	Usage       string
	SideEffects string
	Precautions string

	SleepInducing     models.EffectLevel
	AlertnessEffect   models.EffectLevel
	StomachIrritation bool
	MealTiming        models.MealTiming
}

// Keyword sets. Matching is substring-based over one lower-cased buffer, so
// entries must be lower-case.
var (
	strongSedativeMarkers = []string{
		"sleeping pill", "hypnotic", "zolpidem", "stilnox", "rem sleep",
	}
	sedationMarkers = []string{
		"drowsiness", "drowsy", "sedative", "sedation", "sleep",
		"chlorpheniramine", "diphenhydramine", "melatonin",
	}
	antihistamineMarkers = []string{
		"antihistamine", "chlorpheniramine", "diphenhydramine",
	}
	thyroidMarkers = []string{
		"thyroid hormone", "levothyroxine", "thyroxine", "synthroid",
	}
	stimulantMarkers = []string{
		"caffeine", "insomnia", "wakefulness", "stimulant",
		"ephedrine", "pseudoephedrine",
	}
	gastricMarkers = []string{
		"stomach", "gastric", "anti-inflammatory",
		"ibuprofen", "aspirin", "naproxen", "nsaid",
		"after meal",
	}
	beforeMealMarkers = []string{"before meal", "empty stomach"}
	afterMealMarkers  = []string{"after meal"}
	withMealMarkers   = []string{"with meal", "during meal", "with food"}
)

// Extract classifies one raw import record. Missing fields default to empty
// strings; the function is pure and never fails.
func Extract(raw map[string]string) Attributes {
	attrs := Attributes{
		Name:        strings.TrimSpace(raw["name"]),
		GenericName: strings.TrimSpace(raw["generic_name"]),
		Company:     strings.TrimSpace(raw["company"]),
		ClassName:   strings.TrimSpace(raw["class_name"]),
		Ingredients: strings.TrimSpace(raw["ingredients"]),
		Effect:      truncate(raw["effect"]),
		Usage:       truncate(raw["usage"]),
		SideEffects: truncate(raw["side_effects"]),
		Precautions: truncate(raw["precautions"]),
	}

	buffer := strings.ToLower(
		attrs.Name + " " + attrs.GenericName + " " + attrs.Effect + " " +
			attrs.Usage + " " + attrs.Precautions + " " + attrs.SideEffects,
	)

	attrs.SleepInducing = classifySedation(buffer)
	attrs.AlertnessEffect = classifyAlertness(buffer)
	attrs.StomachIrritation = containsAny(buffer, gastricMarkers)
	attrs.MealTiming = classifyMealTiming(buffer, attrs.StomachIrritation)

	return attrs
}

// classifySedation grades sleep induction. MEDIUM requires both a general
// sedation keyword and an antihistamine-class marker; LOW is currently never
// emitted by the rule set.
func classifySedation(buffer string) models.EffectLevel {
	if containsAny(buffer, strongSedativeMarkers) {
		return models.EffectHigh
	}
	if containsAny(buffer, sedationMarkers) && containsAny(buffer, antihistamineMarkers) {
		return models.EffectMedium
	}
	return models.EffectNone
}

func classifyAlertness(buffer string) models.EffectLevel {
	if containsAny(buffer, thyroidMarkers) {
		return models.EffectHigh
	}
	if containsAny(buffer, stimulantMarkers) {
		return models.EffectMedium
	}
	return models.EffectNone
}

func classifyMealTiming(buffer string, stomachIrritation bool) models.MealTiming {
	switch {
	case containsAny(buffer, beforeMealMarkers):
		return models.BeforeMeal
	case containsAny(buffer, afterMealMarkers) || stomachIrritation:
		return models.AfterMeal
	case containsAny(buffer, withMealMarkers):
		return models.WithMeal
	}
	return models.Anytime
}

func containsAny(buffer string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(buffer, marker) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxFieldLen {
		return s[:maxFieldLen]
	}
	return s
}
