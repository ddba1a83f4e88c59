// Package recommend computes suggested times of day for taking a medicine.
//
// The decision is a strict precedence chain over the medicine's classification
// attributes: sedation, then stimulant effect, then gastric irritation, then
// meal relativity, then an even spread across the waking day. The first
// applicable branch decides the times; reordering the branches silently
// changes outcomes, so don't.
package recommend

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"dose-planner/internal/models"
)

// Defaults used when no life pattern exists or a field is absent.
const (
	defaultWakeTime      = "07:00"
	defaultBedTime       = "23:00"
	defaultBreakfastTime = "08:00"
	defaultLunchTime     = "12:30"
	defaultDinnerTime    = "19:00"
)

// Recommendation is the result of one recommendation run. Times are in
// generation order, not necessarily chronological; callers needing
// chronological order must sort.
type Recommendation struct {
	Times              []string `json:"recommended_times"`
	TimeSlot           string   `json:"time_slot"`
	MealPeriod         string   `json:"meal_period"`
	Reason             string   `json:"reason"`
	Chronopharmacology string   `json:"chronopharmacology,omitempty"`
	Characteristics    []string `json:"characteristics,omitempty"`
	SpecialWarnings    []string `json:"special_warnings,omitempty"`
	LifePatternNote    string   `json:"life_pattern_note"`
}

// Recommend produces dosing times for a medicine given an optional life
// pattern and a doses-per-day frequency. It never fails: a nil life pattern
// and malformed times fall back to defaults, and frequency is coerced to at
// least 1.
func Recommend(med *models.Medicine, lp *models.LifePattern, frequency int) Recommendation {
	if frequency < 1 {
		frequency = 1
	}

	wake := defaultWakeTime
	bed := defaultBedTime
	if lp != nil {
		wake = orDefault(lp.WakeTime, defaultWakeTime)
		bed = orDefault(lp.BedTime, defaultBedTime)
	}
	breakfast := nullTimeOr(lp, lifeBreakfast, defaultBreakfastTime)
	lunch := nullTimeOr(lp, lifeLunch, defaultLunchTime)
	dinner := nullTimeOr(lp, lifeDinner, defaultDinnerTime)

	wakeHour := parseHour(wake, 7)
	bedHour := parseHour(bed, 23)

	var rec Recommendation

	switch {
	case med.SleepInducing == models.EffectHigh || med.SleepInducing == models.EffectMedium:
		rec = recommendSedating(med, lp, bedHour)

	case med.AlertnessEffect == models.EffectHigh || med.AlertnessEffect == models.EffectMedium:
		rec = recommendStimulating(med, wakeHour)

	case med.StomachIrritation && med.MealTiming == models.AfterMeal:
		rec = recommendGastric(breakfast)

	case med.MealTiming == models.BeforeMeal:
		rec = recommendAroundMeals(frequency, breakfast, lunch, dinner, -30)
		rec.TimeSlot = "before meals"
		rec.Reason = "Absorption is best on an empty stomach; taking this about 30 minutes before eating is generally recommended."
		rec.Chronopharmacology = "On an empty stomach gastric motility is high, so the medicine is absorbed quickly."

	case med.MealTiming == models.AfterMeal:
		rec = recommendAroundMeals(frequency, breakfast, lunch, dinner, 30)
		rec.TimeSlot = "after meals"
		rec.Reason = "Taking this after meals improves absorption or reduces stomach upset."
		rec.Chronopharmacology = "Taken with food, the medicine's bioavailability improves and the stomach lining is protected."

	case med.MealTiming == models.WithMeal:
		rec = Recommendation{
			Times:              []string{breakfast},
			TimeSlot:           "with meal",
			MealPeriod:         "breakfast",
			Reason:             "This medicine works best when taken together with food.",
			Chronopharmacology: "Taking it during a meal keeps absorption steady and can prevent side effects such as low blood sugar.",
		}

	default:
		rec = recommendSpread(frequency, wakeHour, bedHour)
	}

	rec.Characteristics = describeCharacteristics(med)
	rec.SpecialWarnings = append(rec.SpecialWarnings, gastricWarnings(med, rec.TimeSlot)...)
	rec.SpecialWarnings = append(rec.SpecialWarnings, classNameWarnings(med)...)
	rec.LifePatternNote = lifePatternNote(med, lp)

	return rec
}

// recommendSedating handles branch 1: HIGH sedation lands one hour before
// bedtime, MEDIUM two hours before. Hours wrap modulo 24.
func recommendSedating(med *models.Medicine, lp *models.LifePattern, bedHour int) Recommendation {
	rec := Recommendation{MealPeriod: "evening"}

	if med.SleepInducing == models.EffectHigh {
		rec.Times = []string{formatTime(wrapHour(bedHour-1), 0)}
		rec.TimeSlot = "bedtime"
		rec.Reason = "This medicine contains a strong sleep-inducing ingredient and can cause drowsiness. Taking it shortly before bedtime is generally recommended."
		rec.Chronopharmacology = "Melatonin secretion rises in the evening; a sleep-inducing ingredient taken then works with the natural rhythm."
		if lp != nil && lp.HasDriving {
			rec.SpecialWarnings = append(rec.SpecialWarnings, "Avoid driving for at least 8 hours after taking this medicine.")
		}
		if lp != nil && lp.HasFocusWork {
			rec.SpecialWarnings = append(rec.SpecialWarnings, "Avoid taking this medicine before work that requires concentration.")
		}
		return rec
	}

	rec.Times = []string{formatTime(wrapHour(bedHour-2), 0)}
	rec.TimeSlot = "evening"
	rec.Reason = "This medicine can cause mild drowsiness; evening dosing keeps it from interfering with daytime activity."
	rec.Chronopharmacology = "Taken in the evening, when activity winds down, reduced alertness matters least."
	if lp != nil && (lp.HasDriving || lp.HasFocusWork) {
		rec.SpecialWarnings = append(rec.SpecialWarnings, "Daytime doses may cause drowsiness or reduced concentration; use caution.")
	}
	return rec
}

// recommendStimulating handles branch 2: HIGH alertness at wake:30, MEDIUM an
// hour after waking. Both warn against evening dosing.
func recommendStimulating(med *models.Medicine, wakeHour int) Recommendation {
	rec := Recommendation{MealPeriod: "breakfast"}

	if med.AlertnessEffect == models.EffectHigh {
		rec.Times = []string{formatTime(wrapHour(wakeHour), 30)}
		rec.TimeSlot = "morning"
		rec.Reason = "This medicine has a strong alerting effect and can disturb sleep; morning dosing is generally recommended."
		rec.Chronopharmacology = "Cortisol peaks in the morning; an alerting effect then works with the body's rhythm instead of against nighttime melatonin."
		rec.SpecialWarnings = append(rec.SpecialWarnings, "Evening doses may cause insomnia; avoid taking this medicine in the evening.")
		return rec
	}

	rec.Times = []string{formatTime(wrapHour(wakeHour+1), 0)}
	rec.TimeSlot = "morning"
	rec.Reason = "This medicine has a mild alerting effect; taking it in the morning avoids interfering with sleep."
	rec.Chronopharmacology = "Morning dosing supports daytime activity without disturbing the natural sleep rhythm."
	rec.SpecialWarnings = append(rec.SpecialWarnings, "Late-afternoon or evening doses may interfere with sleep.")
	return rec
}

// recommendGastric handles branch 3: stomach-irritating, after-meal medicines
// land half past the breakfast hour.
func recommendGastric(breakfast string) Recommendation {
	return Recommendation{
		Times:              []string{formatTime(parseHour(breakfast, 8), 30)},
		TimeSlot:           "after breakfast",
		MealPeriod:         "breakfast",
		Reason:             "This medicine can irritate the stomach, so taking it after breakfast is recommended.",
		Chronopharmacology: "After a meal the stomach lining is coated with food, which softens the irritation.",
		SpecialWarnings:    []string{"Taking this on an empty stomach may cause heartburn or stomach discomfort; take it after food with plenty of water."},
	}
}

// recommendAroundMeals generates frequency-many times anchored at meal times,
// shifted by offsetMin minutes: 1 dose anchors at breakfast, 2 at breakfast
// and dinner, 3 or more at all three meals.
func recommendAroundMeals(frequency int, breakfast, lunch, dinner string, offsetMin int) Recommendation {
	var anchors []string
	switch {
	case frequency == 1:
		anchors = []string{breakfast}
	case frequency == 2:
		anchors = []string{breakfast, dinner}
	default:
		anchors = []string{breakfast, lunch, dinner}
	}

	times := make([]string, 0, len(anchors))
	for _, anchor := range anchors {
		times = append(times, shiftTime(anchor, offsetMin))
	}

	period := "breakfast"
	if len(anchors) > 1 {
		period = "meals"
	}
	return Recommendation{Times: times, MealPeriod: period}
}

// recommendSpread handles the default branch: distribute doses across the
// wake-to-bed active window, wrapping overnight schedules modulo 24.
func recommendSpread(frequency, wakeHour, bedHour int) Recommendation {
	activeHours := bedHour - wakeHour
	if bedHour <= wakeHour {
		activeHours = 24 - wakeHour + bedHour
	}

	var times []string
	switch frequency {
	case 1:
		times = []string{formatTime(wrapHour(wakeHour+1), 0)}
	case 2:
		times = []string{
			formatTime(wrapHour(wakeHour+1), 0),
			formatTime(wrapHour(wakeHour+activeHours/2), 0),
		}
	case 3:
		times = []string{
			formatTime(wrapHour(wakeHour+1), 0),
			formatTime(wrapHour(wakeHour+activeHours/3), 0),
			formatTime(wrapHour(wakeHour+activeHours*2/3), 0),
		}
	default:
		interval := activeHours / frequency
		for i := 0; i < frequency; i++ {
			times = append(times, formatTime(wrapHour(wakeHour+1+i*interval), 0))
		}
	}

	return Recommendation{
		Times:              times,
		TimeSlot:           "anytime",
		MealPeriod:         "breakfast",
		Reason:             "This medicine has no special timing constraints; take it at a consistent time each day.",
		Chronopharmacology: "Regular dosing keeps the blood concentration steady, which maximizes the effect.",
	}
}

func describeCharacteristics(med *models.Medicine) []string {
	var out []string
	switch med.SleepInducing {
	case models.EffectHigh:
		out = append(out, "Contains a strong sleep-inducing ingredient - may cause drowsiness")
	case models.EffectMedium:
		out = append(out, "Moderate sleep-inducing effect - drowsiness is possible")
	}
	switch med.AlertnessEffect {
	case models.EffectHigh:
		out = append(out, "Strong alerting effect - may disturb sleep")
	case models.EffectMedium:
		out = append(out, "Moderate alerting effect - use caution with evening doses")
	}
	if med.StomachIrritation {
		out = append(out, "May irritate the stomach - take after food")
	}
	return out
}

// gastricWarnings adds the empty-stomach caution for irritating medicines
// whose time was decided by an earlier branch.
func gastricWarnings(med *models.Medicine, timeSlot string) []string {
	if !med.StomachIrritation || timeSlot == "after breakfast" {
		return nil
	}
	return []string{"This medicine may irritate the stomach; prefer taking it after food."}
}

// classNameWarnings appends category cautions from the medicine's class name.
func classNameWarnings(med *models.Medicine) []string {
	if !med.ClassName.Valid {
		return nil
	}
	class := strings.ToLower(med.ClassName.String)

	var warnings []string
	if strings.Contains(class, "antibiotic") {
		warnings = append(warnings, "Antibiotics must be taken regularly for the full prescribed course; do not stop early even if symptoms improve.")
	}
	if strings.Contains(class, "diabet") {
		warnings = append(warnings, "If signs of low blood sugar appear (cold sweat, trembling, dizziness), take sugar immediately and consult your doctor.")
	}
	if strings.Contains(class, "hypertension") || strings.Contains(class, "blood pressure") {
		warnings = append(warnings, "If dizziness is severe or blood pressure drops too far, consult your doctor about adjusting the dosing time.")
	}
	if strings.Contains(class, "sleep aid") || strings.Contains(class, "hypnotic") {
		warnings = append(warnings,
			"Sleep aids can be habit-forming; take them only as directed by your doctor.",
			"Make sure you have at least 7-8 hours available for sleep after taking this medicine.")
	}
	return warnings
}

func lifePatternNote(med *models.Medicine, lp *models.LifePattern) string {
	if lp == nil {
		return "Set up your life pattern to receive dosing times tailored to your daily routine."
	}

	notes := []string{fmt.Sprintf("Wake time: %s, bed time: %s.", lp.WakeTime, lp.BedTime)}

	if med.SleepInducing != models.EffectNone && lp.WorkStartTime.Valid {
		notes = append(notes, fmt.Sprintf("Avoid taking this before your work starts at %s.", lp.WorkStartTime.String))
	}
	if med.AlertnessEffect != models.EffectNone {
		notes = append(notes, fmt.Sprintf("Take it at least 6 hours before your bed time (%s).", lp.BedTime))
	}
	if lp.BreakfastTime.Valid && med.MealTiming != models.Anytime {
		notes = append(notes, fmt.Sprintf("Align doses with your meal times (breakfast: %s).", lp.BreakfastTime.String))
	}

	return strings.Join(notes, " ")
}

// wrapHour normalizes an hour into [0, 24).
func wrapHour(h int) int {
	h %= 24
	if h < 0 {
		h += 24
	}
	return h
}

func formatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// parseHour extracts the hour from an HH:MM string, falling back on malformed
// input.
func parseHour(hhmm string, fallback int) int {
	parts := strings.SplitN(hhmm, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fallback
	}
	return hour
}

// shiftTime moves an HH:MM time by delta minutes, wrapping around midnight.
func shiftTime(hhmm string, delta int) string {
	parts := strings.SplitN(hhmm, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		hour = 8
	}
	minute := 0
	if len(parts) == 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			minute = m
		}
	}

	total := (hour*60 + minute + delta) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return formatTime(total/60, total%60)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

type mealField int

const (
	lifeBreakfast mealField = iota
	lifeLunch
	lifeDinner
)

// nullTimeOr reads an optional meal time from the life pattern, falling back
// when the pattern or the field is absent.
func nullTimeOr(lp *models.LifePattern, field mealField, fallback string) string {
	if lp == nil {
		return fallback
	}
	var v sql.NullString
	switch field {
	case lifeBreakfast:
		v = lp.BreakfastTime
	case lifeLunch:
		v = lp.LunchTime
	case lifeDinner:
		v = lp.DinnerTime
	}
	if v.Valid && strings.TrimSpace(v.String) != "" {
		return v.String
	}
	return fallback
}
