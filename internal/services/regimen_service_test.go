package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"dose-planner/internal/database"
	"dose-planner/internal/interaction"
	"dose-planner/internal/models"
	"dose-planner/internal/repository"
)

func setupServiceTestDB(t *testing.T) *database.DB {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP
		);
		CREATE TABLE medicines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			generic_name TEXT,
			company TEXT,
			class_name TEXT,
			ingredients TEXT,
			effect TEXT,
			usage TEXT,
			side_effects TEXT,
			precautions TEXT,
			sleep_inducing TEXT NOT NULL DEFAULT 'NONE',
			alertness_effect TEXT NOT NULL DEFAULT 'NONE',
			stomach_irritation BOOLEAN NOT NULL DEFAULT 0,
			meal_timing TEXT NOT NULL DEFAULT 'ANYTIME',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE life_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
			wake_time TEXT NOT NULL,
			bed_time TEXT NOT NULL,
			breakfast_time TEXT,
			lunch_time TEXT,
			dinner_time TEXT,
			work_start_time TEXT,
			work_end_time TEXT,
			has_driving BOOLEAN NOT NULL DEFAULT 0,
			has_focus_work BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE user_medicines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			medicine_id INTEGER NOT NULL REFERENCES medicines(id),
			dosage TEXT NOT NULL DEFAULT '1 tablet',
			frequency INTEGER NOT NULL DEFAULT 1,
			start_date DATE NOT NULL,
			end_date DATE,
			notes TEXT,
			recommended_times TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE drug_interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			medicine_a_id INTEGER NOT NULL REFERENCES medicines(id),
			medicine_b_id INTEGER NOT NULL REFERENCES medicines(id),
			severity_level TEXT NOT NULL,
			interaction_type TEXT NOT NULL,
			description TEXT NOT NULL,
			recommendation TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(medicine_a_id, medicine_b_id)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

type serviceFixture struct {
	db      *database.DB
	service *RegimenService
	userID  int64
}

func newServiceFixture(t *testing.T) *serviceFixture {
	db := setupServiceTestDB(t)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewUserRepository(db)
	user := &models.User{Email: "user@example.com", Name: "User", PasswordHash: "hash"}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	analyzer := interaction.NewAnalyzer(repository.NewInteractionRepository(db))
	service := NewRegimenService(
		repository.NewMedicineRepository(db),
		repository.NewUserMedicineRepository(db),
		repository.NewLifePatternRepository(db),
		analyzer,
	)

	return &serviceFixture{db: db, service: service, userID: user.ID}
}

func (f *serviceFixture) addMedicine(t *testing.T, m *models.Medicine) int64 {
	if err := repository.NewMedicineRepository(f.db).Create(m); err != nil {
		t.Fatalf("Failed to create medicine: %v", err)
	}
	return m.ID
}

func (f *serviceFixture) addInteraction(t *testing.T, a, b int64, severity models.Severity) {
	rec := &models.DrugInteraction{
		MedicineAID:     a,
		MedicineBID:     b,
		SeverityLevel:   severity,
		InteractionType: models.EffectIncrease,
		Description:     "test interaction",
	}
	if err := repository.NewInteractionRepository(f.db).Create(rec); err != nil {
		t.Fatalf("Failed to create interaction: %v", err)
	}
}

func TestRegimenService_Add(t *testing.T) {
	f := newServiceFixture(t)

	medID := f.addMedicine(t, &models.Medicine{
		Name:            "Sleep Tab",
		SleepInducing:   models.EffectHigh,
		AlertnessEffect: models.EffectNone,
		MealTiming:      models.Anytime,
	})

	result, err := f.service.Add(f.userID, AddInput{
		MedicineID: medID,
		Dosage:     "1 tablet",
		Frequency:  1,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Entry.ID == 0 {
		t.Error("Expected entry to be persisted")
	}
	if result.Entry.Status != models.StatusActive {
		t.Errorf("Expected active status, got %s", result.Entry.Status)
	}

	// No life pattern yet, so the default bed time 23:00 drives the time
	if len(result.Recommendation.Times) != 1 || result.Recommendation.Times[0] != "22:00" {
		t.Errorf("Expected default-pattern time [22:00], got %v", result.Recommendation.Times)
	}

	// The recommendation is cached on the entry
	if times := result.Entry.RecommendedTimeList(); len(times) != 1 || times[0] != "22:00" {
		t.Errorf("Expected cached times [22:00], got %v", times)
	}

	entries, err := f.service.List(f.userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 regimen entry, got %d", len(entries))
	}
}

func TestRegimenService_AddDuplicate(t *testing.T) {
	f := newServiceFixture(t)

	medID := f.addMedicine(t, &models.Medicine{
		Name:       "Plain Tab",
		MealTiming: models.Anytime,
	})

	input := AddInput{MedicineID: medID, Dosage: "1 tablet", Frequency: 1}
	if _, err := f.service.Add(f.userID, input); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := f.service.Add(f.userID, input); err != ErrAlreadyAdded {
		t.Errorf("Expected ErrAlreadyAdded, got %v", err)
	}

	// After removal the medicine can be added again
	entries, _ := f.service.List(f.userID)
	if err := f.service.Remove(f.userID, entries[0].ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.service.Add(f.userID, input); err != nil {
		t.Errorf("Expected re-add after removal to succeed, got %v", err)
	}
}

func TestRegimenService_AddUnknownMedicine(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Add(f.userID, AddInput{MedicineID: 9999, Frequency: 1})
	if err != repository.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegimenService_AddReportsConflicts(t *testing.T) {
	f := newServiceFixture(t)

	existingID := f.addMedicine(t, &models.Medicine{
		Name:        "Old Tab",
		Ingredients: sql.NullString{String: "ibuprofen", Valid: true},
		MealTiming:  models.Anytime,
	})
	newID := f.addMedicine(t, &models.Medicine{
		Name:        "New Tab",
		Ingredients: sql.NullString{String: "Ibuprofen, caffeine", Valid: true},
		MealTiming:  models.Anytime,
	})
	unrelatedID := f.addMedicine(t, &models.Medicine{
		Name:       "Unrelated Tab",
		MealTiming: models.Anytime,
	})

	f.addInteraction(t, existingID, newID, models.SeveritySevere)
	f.addInteraction(t, newID, unrelatedID, models.SeverityMild)

	if _, err := f.service.Add(f.userID, AddInput{MedicineID: existingID, Frequency: 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := f.service.Add(f.userID, AddInput{MedicineID: newID, Frequency: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Only the conflict with the medicine actually taken is reported
	if len(result.Interactions) != 1 {
		t.Fatalf("Expected 1 regimen interaction, got %d", len(result.Interactions))
	}
	if result.Interactions[0].SeverityLevel != models.SeveritySevere {
		t.Errorf("Expected SEVERE, got %s", result.Interactions[0].SeverityLevel)
	}
	if result.Interactions[0].Other.ID != existingID {
		t.Errorf("Expected conflict with existing medicine %d, got %d", existingID, result.Interactions[0].Other.ID)
	}

	// Shared ibuprofen between old and new
	if len(result.DuplicateIngredients) != 1 || result.DuplicateIngredients[0].Ingredient != "ibuprofen" {
		t.Errorf("Expected shared ibuprofen, got %+v", result.DuplicateIngredients)
	}
}

func TestRegimenService_AddUsesLifePattern(t *testing.T) {
	f := newServiceFixture(t)

	pattern := &models.LifePattern{
		UserID:   f.userID,
		WakeTime: "06:00",
		BedTime:  "21:00",
	}
	if err := repository.NewLifePatternRepository(f.db).Upsert(pattern); err != nil {
		t.Fatalf("Failed to save pattern: %v", err)
	}

	medID := f.addMedicine(t, &models.Medicine{
		Name:          "Night Tab",
		SleepInducing: models.EffectHigh,
		MealTiming:    models.Anytime,
	})

	result, err := f.service.Add(f.userID, AddInput{MedicineID: medID, Frequency: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Recommendation.Times) != 1 || result.Recommendation.Times[0] != "20:00" {
		t.Errorf("Expected pattern-driven time [20:00], got %v", result.Recommendation.Times)
	}
}

func TestRegimenService_SelfCheck(t *testing.T) {
	f := newServiceFixture(t)

	aID := f.addMedicine(t, &models.Medicine{
		Name:        "A Tab",
		Ingredients: sql.NullString{String: "aspirin", Valid: true},
		MealTiming:  models.Anytime,
	})
	bID := f.addMedicine(t, &models.Medicine{
		Name:        "B Tab",
		Ingredients: sql.NullString{String: "aspirin", Valid: true},
		MealTiming:  models.Anytime,
	})
	f.addInteraction(t, aID, bID, models.SeverityModerate)

	// One medicine: empty report without analysis
	if _, err := f.service.Add(f.userID, AddInput{MedicineID: aID, Frequency: 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	report, err := f.service.SelfCheck(f.userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Summary.TotalMedicines != 1 || len(report.Interactions) != 0 {
		t.Errorf("Expected empty single-medicine report, got %+v", report.Summary)
	}

	// Two: the pair and the shared ingredient surface
	if _, err := f.service.Add(f.userID, AddInput{MedicineID: bID, Frequency: 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	report, err = f.service.SelfCheck(f.userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Summary.TotalMedicines != 2 {
		t.Errorf("Expected 2 medicines, got %d", report.Summary.TotalMedicines)
	}
	if len(report.Interactions) != 1 || report.Interactions[0].SeverityLevel != models.SeverityModerate {
		t.Errorf("Expected the moderate pair, got %+v", report.Interactions)
	}
	if !report.Summary.HasDuplicateIngredients {
		t.Error("Expected duplicate ingredient flag")
	}
}
