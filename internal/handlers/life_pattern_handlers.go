package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"dose-planner/internal/database"
	"dose-planner/internal/middleware"
	"dose-planner/internal/models"
	"dose-planner/internal/repository"
)

// LifePatternRequest represents a life pattern update. Times are HH:MM.
type LifePatternRequest struct {
	WakeTime      string `json:"wake_time"`
	BedTime       string `json:"bed_time"`
	BreakfastTime string `json:"breakfast_time,omitempty"`
	LunchTime     string `json:"lunch_time,omitempty"`
	DinnerTime    string `json:"dinner_time,omitempty"`
	WorkStartTime string `json:"work_start_time,omitempty"`
	WorkEndTime   string `json:"work_end_time,omitempty"`
	HasDriving    bool   `json:"has_driving"`
	HasFocusWork  bool   `json:"has_focus_work"`
}

// LifePatternResponse represents a life pattern in responses
type LifePatternResponse struct {
	WakeTime      string `json:"wake_time"`
	BedTime       string `json:"bed_time"`
	BreakfastTime string `json:"breakfast_time,omitempty"`
	LunchTime     string `json:"lunch_time,omitempty"`
	DinnerTime    string `json:"dinner_time,omitempty"`
	WorkStartTime string `json:"work_start_time,omitempty"`
	WorkEndTime   string `json:"work_end_time,omitempty"`
	HasDriving    bool   `json:"has_driving"`
	HasFocusWork  bool   `json:"has_focus_work"`
}

func lifePatternResponse(p *models.LifePattern) LifePatternResponse {
	return LifePatternResponse{
		WakeTime:      p.WakeTime,
		BedTime:       p.BedTime,
		BreakfastTime: p.BreakfastTime.String,
		LunchTime:     p.LunchTime.String,
		DinnerTime:    p.DinnerTime.String,
		WorkStartTime: p.WorkStartTime.String,
		WorkEndTime:   p.WorkEndTime.String,
		HasDriving:    p.HasDriving,
		HasFocusWork:  p.HasFocusWork,
	}
}

// HandleGetLifePattern returns the user's life pattern
func HandleGetLifePattern(db *database.DB) http.HandlerFunc {
	lifePatternRepo := repository.NewLifePatternRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		pattern, err := lifePatternRepo.GetByUserID(userID)
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Life pattern not set")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load life pattern")
			return
		}

		respondJSON(w, http.StatusOK, lifePatternResponse(pattern))
	}
}

// HandleSaveLifePattern creates or replaces the user's life pattern
func HandleSaveLifePattern(db *database.DB) http.HandlerFunc {
	lifePatternRepo := repository.NewLifePatternRepository(db)

	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		var req LifePatternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if !isValidClockTime(req.WakeTime) || !isValidClockTime(req.BedTime) {
			respondError(w, http.StatusBadRequest, "wake_time and bed_time must be HH:MM")
			return
		}
		for _, optional := range []string{req.BreakfastTime, req.LunchTime, req.DinnerTime, req.WorkStartTime, req.WorkEndTime} {
			if optional != "" && !isValidClockTime(optional) {
				respondError(w, http.StatusBadRequest, "Times must be HH:MM")
				return
			}
		}

		pattern := &models.LifePattern{
			UserID:        userID,
			WakeTime:      req.WakeTime,
			BedTime:       req.BedTime,
			BreakfastTime: optionalTime(req.BreakfastTime),
			LunchTime:     optionalTime(req.LunchTime),
			DinnerTime:    optionalTime(req.DinnerTime),
			WorkStartTime: optionalTime(req.WorkStartTime),
			WorkEndTime:   optionalTime(req.WorkEndTime),
			HasDriving:    req.HasDriving,
			HasFocusWork:  req.HasFocusWork,
		}
		if err := lifePatternRepo.Upsert(pattern); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save life pattern")
			return
		}

		respondJSON(w, http.StatusOK, lifePatternResponse(pattern))
	}
}

func optionalTime(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
