package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dose-planner/internal/interaction"
	"dose-planner/internal/middleware"
	"dose-planner/internal/models"
	"dose-planner/internal/repository"
	"dose-planner/internal/services"
)

// AddMedicineRequest represents a request to add a medicine to the regimen
type AddMedicineRequest struct {
	MedicineID int64  `json:"medicine_id"`
	Dosage     string `json:"dosage"`
	Frequency  int    `json:"frequency"`
	StartDate  string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Notes      string `json:"notes,omitempty"`
}

// RegimenEntryResponse represents one regimen entry in responses
type RegimenEntryResponse struct {
	ID               int64            `json:"id"`
	Medicine         MedicineResponse `json:"medicine"`
	Dosage           string           `json:"dosage"`
	Frequency        int              `json:"frequency"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	RecommendedTimes []string         `json:"recommended_times"`
	Status           string           `json:"status"`
	CreatedAt        string           `json:"created_at"`
}

func regimenEntryResponse(um *models.UserMedicine) RegimenEntryResponse {
	resp := RegimenEntryResponse{
		ID:               um.ID,
		Dosage:           um.Dosage,
		Frequency:        um.Frequency,
		StartDate:        um.StartDate.Format("2006-01-02"),
		Notes:            um.Notes.String,
		RecommendedTimes: um.RecommendedTimeList(),
		Status:           string(um.Status),
		CreatedAt:        um.CreatedAt.Format(time.RFC3339),
	}
	if um.EndDate.Valid {
		resp.EndDate = um.EndDate.Time.Format("2006-01-02")
	}
	if um.Medicine != nil {
		resp.Medicine = medicineResponse(um.Medicine)
	}
	if resp.RecommendedTimes == nil {
		resp.RecommendedTimes = []string{}
	}
	return resp
}

// HandleAddToRegimen adds a medicine to the user's regimen, returning the
// interaction warnings and timing recommendation alongside the new entry
func HandleAddToRegimen(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		var req AddMedicineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.MedicineID <= 0 {
			respondError(w, http.StatusBadRequest, "medicine_id is required")
			return
		}
		if req.Frequency <= 0 {
			req.Frequency = 1
		}

		var startDate, endDate time.Time
		if req.StartDate != "" {
			var err error
			startDate, err = time.Parse("2006-01-02", req.StartDate)
			if err != nil {
				respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
				return
			}
		}
		if req.EndDate != "" {
			var err error
			endDate, err = time.Parse("2006-01-02", req.EndDate)
			if err != nil {
				respondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
				return
			}
		}

		result, err := regimen.Add(userID, services.AddInput{
			MedicineID: req.MedicineID,
			Dosage:     req.Dosage,
			Frequency:  req.Frequency,
			StartDate:  startDate,
			EndDate:    endDate,
			Notes:      req.Notes,
		})
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Medicine not found")
			return
		}
		if err == services.ErrAlreadyAdded {
			respondError(w, http.StatusConflict, "Medicine is already in your regimen")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to add medicine")
			return
		}

		interactions := result.Interactions
		if interactions == nil {
			interactions = []interaction.Finding{}
		}
		duplicates := result.DuplicateIngredients
		if duplicates == nil {
			duplicates = []interaction.DuplicateIngredient{}
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"entry":                 regimenEntryResponse(result.Entry),
			"recommendation":        result.Recommendation,
			"interactions":          interactions,
			"duplicate_ingredients": duplicates,
			"has_warnings":          len(interactions) > 0 || len(duplicates) > 0,
		})
	}
}

// HandleListRegimen returns the user's active regimen, newest first
func HandleListRegimen(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		entries, err := regimen.List(userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load regimen")
			return
		}

		results := make([]RegimenEntryResponse, 0, len(entries))
		for _, um := range entries {
			results = append(results, regimenEntryResponse(um))
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"medicines": results,
			"count":     len(results),
		})
	}
}

// HandleRemoveFromRegimen marks a regimen entry as removed
func HandleRemoveFromRegimen(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid entry ID")
			return
		}

		err = regimen.Remove(userID, entryID)
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Regimen entry not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to remove medicine")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Medicine removed from regimen",
		})
	}
}

// HandleRegimenInteractions analyzes the user's active regimen against
// itself
func HandleRegimenInteractions(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		report, err := regimen.SelfCheck(userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Interaction analysis failed")
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}
