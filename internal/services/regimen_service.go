package services

import (
	"database/sql"
	"fmt"
	"time"

	"dose-planner/internal/interaction"
	"dose-planner/internal/models"
	"dose-planner/internal/recommend"
	"dose-planner/internal/repository"
)

// ErrAlreadyAdded is returned when the medicine is already active in the
// user's regimen.
var ErrAlreadyAdded = fmt.Errorf("medicine already in regimen")

// RegimenService coordinates regimen changes with interaction analysis and
// timing recommendations.
type RegimenService struct {
	medicines     *repository.MedicineRepository
	userMedicines *repository.UserMedicineRepository
	lifePatterns  *repository.LifePatternRepository
	analyzer      *interaction.Analyzer
}

func NewRegimenService(
	medicines *repository.MedicineRepository,
	userMedicines *repository.UserMedicineRepository,
	lifePatterns *repository.LifePatternRepository,
	analyzer *interaction.Analyzer,
) *RegimenService {
	return &RegimenService{
		medicines:     medicines,
		userMedicines: userMedicines,
		lifePatterns:  lifePatterns,
		analyzer:      analyzer,
	}
}

// AddInput is a request to add a medicine to the regimen. A zero StartDate
// defaults to today; a zero EndDate means open-ended.
type AddInput struct {
	MedicineID int64
	Dosage     string
	Frequency  int
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
}

// AddResult carries the new regimen entry plus the analysis run against the
// medicines the user was already taking.
type AddResult struct {
	Entry                *models.UserMedicine              `json:"entry"`
	Recommendation       recommend.Recommendation          `json:"recommendation"`
	Interactions         []interaction.Finding             `json:"interactions"`
	DuplicateIngredients []interaction.DuplicateIngredient `json:"duplicate_ingredients,omitempty"`
}

// Add adds a medicine to the user's regimen. The interaction check runs
// against the user's current active medicines before the insert, so the
// result warns about conflicts with what they already take. The timing
// recommendation is computed from the user's life pattern (or defaults when
// none is set) and cached on the entry.
func (s *RegimenService) Add(userID int64, input AddInput) (*AddResult, error) {
	medicine, err := s.medicines.GetByID(input.MedicineID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userMedicines.GetActiveByUserAndMedicine(userID, medicine.ID); err == nil {
		return nil, ErrAlreadyAdded
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	existing, err := s.userMedicines.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	existingIDs := make([]int64, 0, len(existing))
	existingMeds := make([]*models.Medicine, 0, len(existing)+1)
	for _, um := range existing {
		existingIDs = append(existingIDs, um.MedicineID)
		existingMeds = append(existingMeds, um.Medicine)
	}

	report, err := s.analyzer.ForMedicine(medicine.ID, existingIDs)
	if err != nil {
		return nil, err
	}

	var findings []interaction.Finding
	for _, f := range report.Interactions {
		if f.InRegimen {
			findings = append(findings, f)
		}
	}

	duplicates := interaction.DuplicateIngredients(append(existingMeds, medicine))

	lifePattern, err := s.lifePatterns.GetByUserID(userID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	rec := recommend.Recommend(medicine, lifePattern, input.Frequency)

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	entry := &models.UserMedicine{
		UserID:           userID,
		MedicineID:       medicine.ID,
		Dosage:           input.Dosage,
		Frequency:        input.Frequency,
		StartDate:        startDate,
		EndDate:          sql.NullTime{Time: input.EndDate, Valid: !input.EndDate.IsZero()},
		Notes:            nullString(input.Notes),
		RecommendedTimes: models.EncodeRecommendedTimes(rec.Times),
		Status:           models.StatusActive,
	}
	if err := s.userMedicines.Create(entry); err != nil {
		return nil, err
	}
	entry.Medicine = medicine

	return &AddResult{
		Entry:                entry,
		Recommendation:       rec,
		Interactions:         findings,
		DuplicateIngredients: duplicates,
	}, nil
}

// List returns the user's active regimen entries, newest first.
func (s *RegimenService) List(userID int64) ([]*models.UserMedicine, error) {
	return s.userMedicines.ListActiveByUser(userID)
}

// Remove marks a regimen entry as removed. Returns repository.ErrNotFound
// when the entry does not exist, belongs to another user, or was already
// removed.
func (s *RegimenService) Remove(userID, entryID int64) error {
	return s.userMedicines.Remove(entryID, userID)
}

// SelfCheck analyzes the user's active regimen against itself: every
// interacting pair within it plus shared active ingredients.
func (s *RegimenService) SelfCheck(userID int64) (*interaction.Report, error) {
	entries, err := s.userMedicines.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	medicines := make([]*models.Medicine, 0, len(entries))
	for _, um := range entries {
		medicines = append(medicines, um.Medicine)
	}

	return s.analyzer.ForMedicineSet(medicines)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
