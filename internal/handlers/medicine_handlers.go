package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dose-planner/internal/database"
	"dose-planner/internal/interaction"
	"dose-planner/internal/middleware"
	"dose-planner/internal/models"
	"dose-planner/internal/recommend"
	"dose-planner/internal/repository"
)

const (
	searchMinLength = 2
	searchLimit     = 20
)

// MedicineResponse represents medicine data in responses
type MedicineResponse struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	GenericName       string             `json:"generic_name,omitempty"`
	Company           string             `json:"company,omitempty"`
	ClassName         string             `json:"class_name,omitempty"`
	Ingredients       string             `json:"ingredients,omitempty"`
	Effect            string             `json:"effect,omitempty"`
	Usage             string             `json:"usage,omitempty"`
	SideEffects       string             `json:"side_effects,omitempty"`
	Precautions       string             `json:"precautions,omitempty"`
	SleepInducing     models.EffectLevel `json:"sleep_inducing"`
	AlertnessEffect   models.EffectLevel `json:"alertness_effect"`
	StomachIrritation bool               `json:"stomach_irritation"`
	MealTiming        models.MealTiming  `json:"meal_timing"`
}

func medicineResponse(m *models.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:                m.ID,
		Name:              m.Name,
		GenericName:       m.GenericName.String,
		Company:           m.Company.String,
		ClassName:         m.ClassName.String,
		Ingredients:       m.Ingredients.String,
		Effect:            m.Effect.String,
		Usage:             m.Usage.String,
		SideEffects:       m.SideEffects.String,
		Precautions:       m.Precautions.String,
		SleepInducing:     m.SleepInducing,
		AlertnessEffect:   m.AlertnessEffect,
		StomachIrritation: m.StomachIrritation,
		MealTiming:        m.MealTiming,
	}
}

// HandleSearchMedicines searches the medicine reference by name
func HandleSearchMedicines(db *database.DB) http.HandlerFunc {
	medicineRepo := repository.NewMedicineRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if len(query) < searchMinLength {
			respondError(w, http.StatusBadRequest, "Search query must be at least 2 characters")
			return
		}

		medicines, err := medicineRepo.Search(query, searchLimit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Search failed")
			return
		}

		results := make([]MedicineResponse, 0, len(medicines))
		for _, m := range medicines {
			results = append(results, medicineResponse(m))
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"medicines": results,
			"count":     len(results),
		})
	}
}

// HandleGetMedicine returns one medicine with a timing recommendation for
// the current user's life pattern
func HandleGetMedicine(db *database.DB) http.HandlerFunc {
	medicineRepo := repository.NewMedicineRepository(db)
	lifePatternRepo := repository.NewLifePatternRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		medicine, ok := medicineFromPath(w, r, medicineRepo)
		if !ok {
			return
		}

		lifePattern := lifePatternForRequest(r, lifePatternRepo)
		rec := recommend.Recommend(medicine, lifePattern, frequencyParam(r))

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"medicine":       medicineResponse(medicine),
			"recommendation": rec,
		})
	}
}

// HandleGetRecommendation returns the timing recommendation alone
func HandleGetRecommendation(db *database.DB) http.HandlerFunc {
	medicineRepo := repository.NewMedicineRepository(db)
	lifePatternRepo := repository.NewLifePatternRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		medicine, ok := medicineFromPath(w, r, medicineRepo)
		if !ok {
			return
		}

		lifePattern := lifePatternForRequest(r, lifePatternRepo)
		rec := recommend.Recommend(medicine, lifePattern, frequencyParam(r))

		respondJSON(w, http.StatusOK, rec)
	}
}

// HandleGetMedicineInteractions returns every known interaction for a
// medicine, flagging the ones involving the user's active regimen
func HandleGetMedicineInteractions(db *database.DB) http.HandlerFunc {
	medicineRepo := repository.NewMedicineRepository(db)
	userMedicineRepo := repository.NewUserMedicineRepository(db)
	analyzer := interaction.NewAnalyzer(repository.NewInteractionRepository(db))

	return func(w http.ResponseWriter, r *http.Request) {
		medicine, ok := medicineFromPath(w, r, medicineRepo)
		if !ok {
			return
		}

		var activeIDs []int64
		if userID := middleware.GetUserID(r.Context()); userID != 0 {
			entries, err := userMedicineRepo.ListActiveByUser(userID)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Failed to load regimen")
				return
			}
			for _, um := range entries {
				activeIDs = append(activeIDs, um.MedicineID)
			}
		}

		report, err := analyzer.ForMedicine(medicine.ID, activeIDs)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Interaction analysis failed")
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

// medicineFromPath loads the medicine named by the {id} path parameter,
// writing the error response itself when the id is bad or unknown
func medicineFromPath(w http.ResponseWriter, r *http.Request, repo *repository.MedicineRepository) (*models.Medicine, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid medicine ID")
		return nil, false
	}

	medicine, err := repo.GetByID(id)
	if err == repository.ErrNotFound {
		respondError(w, http.StatusNotFound, "Medicine not found")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load medicine")
		return nil, false
	}

	return medicine, true
}

// lifePatternForRequest returns the current user's life pattern, or nil when
// unauthenticated or not yet set
func lifePatternForRequest(r *http.Request, repo *repository.LifePatternRepository) *models.LifePattern {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		return nil
	}
	pattern, err := repo.GetByUserID(userID)
	if err != nil {
		return nil
	}
	return pattern
}

// frequencyParam reads the doses-per-day query parameter, defaulting to 1
func frequencyParam(r *http.Request) int {
	if v := r.URL.Query().Get("frequency"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
