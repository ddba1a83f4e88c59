package interaction

import (
	"database/sql"
	"testing"

	"dose-planner/internal/models"
)

// fakeSource serves canned interaction records and counts queries.
type fakeSource struct {
	records        []*models.DrugInteraction
	forMedicineN   int
	withinSetN     int
	lastSetQueried []int64
}

func (f *fakeSource) ListForMedicine(medicineID int64) ([]*models.DrugInteraction, error) {
	f.forMedicineN++
	var out []*models.DrugInteraction
	for _, rec := range f.records {
		if rec.MedicineAID == medicineID || rec.MedicineBID == medicineID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSource) ListWithinSet(medicineIDs []int64) ([]*models.DrugInteraction, error) {
	f.withinSetN++
	f.lastSetQueried = medicineIDs
	inSet := make(map[int64]bool)
	for _, id := range medicineIDs {
		inSet[id] = true
	}
	var out []*models.DrugInteraction
	for _, rec := range f.records {
		if inSet[rec.MedicineAID] && inSet[rec.MedicineBID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func med(id int64, name, ingredients string) *models.Medicine {
	return &models.Medicine{
		ID:          id,
		Name:        name,
		Ingredients: sql.NullString{String: ingredients, Valid: ingredients != ""},
	}
}

func record(id, a, b int64, severity models.Severity) *models.DrugInteraction {
	return &models.DrugInteraction{
		ID:              id,
		MedicineAID:     a,
		MedicineBID:     b,
		SeverityLevel:   severity,
		InteractionType: models.EffectIncrease,
		Description:     "test interaction",
		MedicineA:       med(a, "med-a", ""),
		MedicineB:       med(b, "med-b", ""),
	}
}

func TestForMedicine(t *testing.T) {
	src := &fakeSource{records: []*models.DrugInteraction{
		record(1, 10, 20, models.SeverityMild),
		record(2, 30, 10, models.SeveritySevere),
		record(3, 10, 40, models.SeverityModerate),
	}}
	analyzer := NewAnalyzer(src)

	report, err := analyzer.ForMedicine(10, []int64{20})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(report.Interactions) != 3 {
		t.Fatalf("Expected 3 interactions, got %d", len(report.Interactions))
	}

	// Severity ordering: SEVERE, MODERATE, MILD
	expected := []models.Severity{models.SeveritySevere, models.SeverityModerate, models.SeverityMild}
	for i, f := range report.Interactions {
		if f.SeverityLevel != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], f.SeverityLevel)
		}
	}

	// The other side is the non-subject medicine
	for _, f := range report.Interactions {
		if f.Other.ID == 10 {
			t.Errorf("Other side should never be the subject, got %+v", f.Other)
		}
	}

	// Only the pairing with medicine 20 is in the regimen
	for _, f := range report.Interactions {
		wantInRegimen := f.Other.ID == 20
		if f.InRegimen != wantInRegimen {
			t.Errorf("Interaction with %d: expected InRegimen=%v, got %v", f.Other.ID, wantInRegimen, f.InRegimen)
		}
	}

	if !report.Summary.HasRegimenConflict {
		t.Error("Expected regimen conflict flag")
	}
	if report.Summary.SevereCount != 1 || report.Summary.ModerateCount != 1 || report.Summary.MildCount != 1 {
		t.Errorf("Unexpected severity counts: %+v", report.Summary)
	}
}

func TestForMedicineNoCandidates(t *testing.T) {
	src := &fakeSource{records: []*models.DrugInteraction{
		record(1, 10, 20, models.SeverityMild),
	}}
	analyzer := NewAnalyzer(src)

	report, err := analyzer.ForMedicine(10, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Summary.HasRegimenConflict {
		t.Error("Expected no regimen conflict without candidates")
	}
	if report.Interactions[0].InRegimen {
		t.Error("Expected InRegimen=false without candidates")
	}
}

func TestForMedicineSet(t *testing.T) {
	src := &fakeSource{records: []*models.DrugInteraction{
		record(1, 10, 20, models.SeverityMild),
		record(2, 20, 30, models.SeveritySevere),
		record(3, 10, 99, models.SeveritySevere), // 99 not in set
	}}
	analyzer := NewAnalyzer(src)

	medicines := []*models.Medicine{
		med(10, "Alpha", "ibuprofen"),
		med(20, "Beta", "caffeine, ibuprofen"),
		med(30, "Gamma", ""),
	}

	report, err := analyzer.ForMedicineSet(medicines)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(report.Interactions) != 2 {
		t.Fatalf("Expected 2 interactions within the set, got %d", len(report.Interactions))
	}
	if report.Interactions[0].SeverityLevel != models.SeveritySevere {
		t.Errorf("Expected SEVERE first, got %s", report.Interactions[0].SeverityLevel)
	}
	if report.Summary.TotalMedicines != 3 {
		t.Errorf("Expected 3 total medicines, got %d", report.Summary.TotalMedicines)
	}
	if !report.Summary.HasDuplicateIngredients {
		t.Error("Expected duplicate ingredient flag")
	}
	if len(report.DuplicateIngredients) != 1 || report.DuplicateIngredients[0].Ingredient != "ibuprofen" {
		t.Errorf("Expected shared ibuprofen, got %+v", report.DuplicateIngredients)
	}
}

func TestForMedicineSetShortCircuit(t *testing.T) {
	src := &fakeSource{}
	analyzer := NewAnalyzer(src)

	for _, medicines := range [][]*models.Medicine{
		nil,
		{med(10, "Solo", "ibuprofen")},
	} {
		report, err := analyzer.ForMedicineSet(medicines)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(report.Interactions) != 0 {
			t.Errorf("Expected empty report, got %+v", report.Interactions)
		}
		if report.Summary.TotalMedicines != len(medicines) {
			t.Errorf("Expected total %d, got %d", len(medicines), report.Summary.TotalMedicines)
		}
	}

	if src.withinSetN != 0 {
		t.Errorf("Expected no queries for fewer than two medicines, got %d", src.withinSetN)
	}
}

func TestDuplicateIngredients(t *testing.T) {
	tests := []struct {
		name      string
		medicines []*models.Medicine
		expected  []string
	}{
		{
			name: "Case and whitespace insensitive",
			medicines: []*models.Medicine{
				med(1, "A", "Ibuprofen, Caffeine"),
				med(2, "B", " ibuprofen "),
			},
			expected: []string{"ibuprofen"},
		},
		{
			name: "Shared token across lists",
			medicines: []*models.Medicine{
				med(1, "A", "A, B"),
				med(2, "B", "b , c"),
			},
			expected: []string{"b"},
		},
		{
			name: "No overlap",
			medicines: []*models.Medicine{
				med(1, "A", "aspirin"),
				med(2, "B", "paracetamol"),
			},
			expected: nil,
		},
		{
			name: "Multiple shared tokens keep first-seen order",
			medicines: []*models.Medicine{
				med(1, "A", "x, y"),
				med(2, "B", "y, x"),
			},
			expected: []string{"x", "y"},
		},
		{
			name: "Missing ingredient lists",
			medicines: []*models.Medicine{
				med(1, "A", ""),
				med(2, "B", ""),
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuplicateIngredients(tt.medicines)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d duplicates, got %+v", len(tt.expected), got)
			}
			for i, dup := range got {
				if dup.Ingredient != tt.expected[i] {
					t.Errorf("Position %d: expected %q, got %q", i, tt.expected[i], dup.Ingredient)
				}
				if len(dup.Medicines) < 2 {
					t.Errorf("Duplicate %q should list at least two medicines", dup.Ingredient)
				}
			}
		})
	}
}
