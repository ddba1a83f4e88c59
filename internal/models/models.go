package models

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// EffectLevel grades how strongly a medicine induces an effect
// (sedation or alertness).
type EffectLevel string

const (
	EffectNone   EffectLevel = "NONE"
	EffectLow    EffectLevel = "LOW"
	EffectMedium EffectLevel = "MEDIUM"
	EffectHigh   EffectLevel = "HIGH"
)

// Valid reports whether the level is one of the known constants.
func (l EffectLevel) Valid() bool {
	switch l {
	case EffectNone, EffectLow, EffectMedium, EffectHigh:
		return true
	}
	return false
}

// MealTiming relates dosing to meals.
type MealTiming string

const (
	BeforeMeal MealTiming = "BEFORE_MEAL"
	AfterMeal  MealTiming = "AFTER_MEAL"
	WithMeal   MealTiming = "WITH_MEAL"
	Anytime    MealTiming = "ANYTIME"
)

// Valid reports whether the timing is one of the known constants.
func (t MealTiming) Valid() bool {
	switch t {
	case BeforeMeal, AfterMeal, WithMeal, Anytime:
		return true
	}
	return false
}

// Severity is the risk level of a drug interaction.
type Severity string

const (
	SeverityMild     Severity = "MILD"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"
)

// Rank orders severities for reports: SEVERE first, unknown last.
func (s Severity) Rank() int {
	switch s {
	case SeveritySevere:
		return 0
	case SeverityModerate:
		return 1
	case SeverityMild:
		return 2
	}
	return 3
}

// InteractionType describes how two medicines affect each other.
type InteractionType string

const (
	EffectIncrease     InteractionType = "EFFECT_INCREASE"
	EffectDecrease     InteractionType = "EFFECT_DECREASE"
	SideEffectIncrease InteractionType = "SIDE_EFFECT_INCREASE"
	AbsorptionChange   InteractionType = "ABSORPTION_CHANGE"
)

// RegimenStatus is the lifecycle state of a user's medicine entry.
// Removal never deletes the row; it flips the status.
type RegimenStatus string

const (
	StatusActive  RegimenStatus = "active"
	StatusRemoved RegimenStatus = "removed"
)

// User represents a registered user
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    sql.NullTime
}

// Medicine represents a medicine reference record. The four classification
// fields are populated once at import time by the characteristic extractor.
type Medicine struct {
	ID                int64
	Name              string
	GenericName       sql.NullString
	Company           sql.NullString
	ClassName         sql.NullString
	Ingredients       sql.NullString // comma-separated active ingredients
	Effect            sql.NullString
	Usage             sql.NullString
	SideEffects       sql.NullString
	Precautions       sql.NullString
	SleepInducing     EffectLevel
	AlertnessEffect   EffectLevel
	StomachIrritation bool
	MealTiming        MealTiming
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IngredientList splits the ingredients field on commas, trimming and
// lower-casing each token. Empty tokens are dropped.
func (m *Medicine) IngredientList() []string {
	if !m.Ingredients.Valid {
		return nil
	}
	var list []string
	for _, raw := range strings.Split(m.Ingredients.String, ",") {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token != "" {
			list = append(list, token)
		}
	}
	return list
}

// LifePattern represents a user's daily routine. All times are wall-clock
// HH:MM strings with no timezone modeling.
type LifePattern struct {
	ID            int64
	UserID        int64
	WakeTime      string
	BedTime       string
	BreakfastTime sql.NullString
	LunchTime     sql.NullString
	DinnerTime    sql.NullString
	WorkStartTime sql.NullString
	WorkEndTime   sql.NullString
	HasDriving    bool
	HasFocusWork  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserMedicine joins a user to a medicine they take.
type UserMedicine struct {
	ID               int64
	UserID           int64
	MedicineID       int64
	Dosage           string
	Frequency        int
	StartDate        time.Time
	EndDate          sql.NullTime
	Notes            sql.NullString
	RecommendedTimes string // JSON array of "HH:MM" strings, cached at add time
	Status           RegimenStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields (set by repository)
	Medicine *Medicine
}

// RecommendedTimeList decodes the cached recommended times. A malformed or
// empty value yields nil rather than an error; the cache is advisory.
func (um *UserMedicine) RecommendedTimeList() []string {
	if um.RecommendedTimes == "" {
		return nil
	}
	var times []string
	if err := json.Unmarshal([]byte(um.RecommendedTimes), &times); err != nil {
		return nil
	}
	return times
}

// EncodeRecommendedTimes serializes an ordered sequence of HH:MM strings for
// persistence. Order is preserved exactly.
func EncodeRecommendedTimes(times []string) string {
	if times == nil {
		times = []string{}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DrugInteraction represents a known pairwise interaction between two
// medicines. The pair is symmetric in meaning.
type DrugInteraction struct {
	ID              int64
	MedicineAID     int64
	MedicineBID     int64
	SeverityLevel   Severity
	InteractionType InteractionType
	Description     string
	Recommendation  sql.NullString
	CreatedAt       time.Time

	// Joined fields (set by repository)
	MedicineA *Medicine
	MedicineB *Medicine
}
