// Package interaction reports known pairwise drug interactions and duplicate
// active ingredients among a user's medicines. Both entry points are pure
// lookups over a snapshot: nothing here mutates state.
package interaction

import (
	"fmt"
	"sort"

	"dose-planner/internal/models"
)

// Source supplies interaction records. Satisfied by
// repository.InteractionRepository; tests use in-memory fakes.
type Source interface {
	// ListForMedicine returns interactions where the medicine appears on
	// either side of the pair.
	ListForMedicine(medicineID int64) ([]*models.DrugInteraction, error)
	// ListWithinSet returns interactions where both sides are in the set.
	ListWithinSet(medicineIDs []int64) ([]*models.DrugInteraction, error)
}

// MedicineRef identifies a medicine in a report.
type MedicineRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	GenericName string `json:"generic_name,omitempty"`
}

// Finding is one interaction in a report.
type Finding struct {
	ID              int64                  `json:"id"`
	MedicineA       MedicineRef            `json:"medicine_a"`
	MedicineB       MedicineRef            `json:"medicine_b"`
	Other           MedicineRef            `json:"other_medicine"` // single-medicine mode: the non-subject side
	SeverityLevel   models.Severity        `json:"severity_level"`
	InteractionType models.InteractionType `json:"interaction_type"`
	Description     string                 `json:"description"`
	Recommendation  string                 `json:"recommendation,omitempty"`
	InRegimen       bool                   `json:"in_regimen"` // single-medicine mode: other side is in the candidate set
}

// DuplicateIngredient lists the medicines sharing one active ingredient.
type DuplicateIngredient struct {
	Ingredient string        `json:"ingredient"`
	Medicines  []MedicineRef `json:"medicines"`
}

// Summary is the roll-up consumed directly by presentation layers.
type Summary struct {
	TotalMedicines          int  `json:"total_medicines"`
	InteractionCount        int  `json:"interaction_count"`
	SevereCount             int  `json:"severe_count"`
	ModerateCount           int  `json:"moderate_count"`
	MildCount               int  `json:"mild_count"`
	HasDuplicateIngredients bool `json:"has_duplicate_ingredients"`
	HasRegimenConflict      bool `json:"has_regimen_conflict"`
}

// Report is the result of either analysis mode. Interactions are ordered
// SEVERE, MODERATE, MILD; ties keep query order.
type Report struct {
	Interactions         []Finding             `json:"interactions"`
	DuplicateIngredients []DuplicateIngredient `json:"duplicate_ingredients,omitempty"`
	Summary              Summary               `json:"summary"`
}

type Analyzer struct {
	src Source
}

func NewAnalyzer(src Source) *Analyzer {
	return &Analyzer{src: src}
}

// ForMedicine returns every known interaction involving one medicine,
// annotating the findings whose other side is in the candidate set (the
// caller's current active medicines).
func (a *Analyzer) ForMedicine(medicineID int64, candidateIDs []int64) (*Report, error) {
	records, err := a.src.ListForMedicine(medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up interactions: %w", err)
	}

	candidates := make(map[int64]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates[id] = true
	}

	findings := make([]Finding, 0, len(records))
	for _, rec := range records {
		f := newFinding(rec)
		if rec.MedicineAID == medicineID {
			f.Other = f.MedicineB
		} else {
			f.Other = f.MedicineA
		}
		f.InRegimen = candidates[f.Other.ID]
		findings = append(findings, f)
	}

	sortBySeverity(findings)

	report := &Report{Interactions: findings, Summary: summarize(findings, 0)}
	for _, f := range findings {
		if f.InRegimen {
			report.Summary.HasRegimenConflict = true
			break
		}
	}
	return report, nil
}

// ForMedicineSet checks a regimen against itself: interactions where both
// sides are in the set, plus active ingredients shared by two or more
// medicines. Fewer than two medicines short-circuits to an empty report
// without querying.
func (a *Analyzer) ForMedicineSet(medicines []*models.Medicine) (*Report, error) {
	if len(medicines) < 2 {
		return &Report{
			Interactions: []Finding{},
			Summary:      Summary{TotalMedicines: len(medicines)},
		}, nil
	}

	ids := make([]int64, 0, len(medicines))
	for _, m := range medicines {
		ids = append(ids, m.ID)
	}

	records, err := a.src.ListWithinSet(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up interactions: %w", err)
	}

	findings := make([]Finding, 0, len(records))
	for _, rec := range records {
		findings = append(findings, newFinding(rec))
	}
	sortBySeverity(findings)

	duplicates := DuplicateIngredients(medicines)

	report := &Report{
		Interactions:         findings,
		DuplicateIngredients: duplicates,
		Summary:              summarize(findings, len(medicines)),
	}
	report.Summary.HasDuplicateIngredients = len(duplicates) > 0
	return report, nil
}

// DuplicateIngredients groups medicines by ingredient token and reports every
// token shared by two or more medicines. Tokens are compared trimmed and
// lower-cased; output order follows first appearance.
func DuplicateIngredients(medicines []*models.Medicine) []DuplicateIngredient {
	byToken := make(map[string][]MedicineRef)
	var order []string

	for _, m := range medicines {
		ref := refFor(m)
		for _, token := range m.IngredientList() {
			if _, seen := byToken[token]; !seen {
				order = append(order, token)
			}
			byToken[token] = append(byToken[token], ref)
		}
	}

	var duplicates []DuplicateIngredient
	for _, token := range order {
		if refs := byToken[token]; len(refs) >= 2 {
			duplicates = append(duplicates, DuplicateIngredient{Ingredient: token, Medicines: refs})
		}
	}
	return duplicates
}

func newFinding(rec *models.DrugInteraction) Finding {
	f := Finding{
		ID:              rec.ID,
		MedicineA:       MedicineRef{ID: rec.MedicineAID},
		MedicineB:       MedicineRef{ID: rec.MedicineBID},
		SeverityLevel:   rec.SeverityLevel,
		InteractionType: rec.InteractionType,
		Description:     rec.Description,
	}
	if rec.MedicineA != nil {
		f.MedicineA = refFor(rec.MedicineA)
	}
	if rec.MedicineB != nil {
		f.MedicineB = refFor(rec.MedicineB)
	}
	if rec.Recommendation.Valid {
		f.Recommendation = rec.Recommendation.String
	}
	return f
}

func refFor(m *models.Medicine) MedicineRef {
	ref := MedicineRef{ID: m.ID, Name: m.Name}
	if m.GenericName.Valid {
		ref.GenericName = m.GenericName.String
	}
	return ref
}

func sortBySeverity(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].SeverityLevel.Rank() < findings[j].SeverityLevel.Rank()
	})
}

func summarize(findings []Finding, totalMedicines int) Summary {
	s := Summary{
		TotalMedicines:   totalMedicines,
		InteractionCount: len(findings),
	}
	for _, f := range findings {
		switch f.SeverityLevel {
		case models.SeveritySevere:
			s.SevereCount++
		case models.SeverityModerate:
			s.ModerateCount++
		case models.SeverityMild:
			s.MildCount++
		}
	}
	return s
}
