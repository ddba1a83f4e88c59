package repository

import (
	"database/sql"
	"fmt"

	"dose-planner/internal/database"
	"dose-planner/internal/models"
)

type LifePatternRepository struct {
	db *database.DB
}

func NewLifePatternRepository(db *database.DB) *LifePatternRepository {
	return &LifePatternRepository{db: db}
}

// GetByUserID retrieves the life pattern for a user
func (r *LifePatternRepository) GetByUserID(userID int64) (*models.LifePattern, error) {
	query := `
		SELECT id, user_id, wake_time, bed_time, breakfast_time, lunch_time, dinner_time,
		       work_start_time, work_end_time, has_driving, has_focus_work, created_at, updated_at
		FROM life_patterns
		WHERE user_id = ?
	`
	pattern := &models.LifePattern{}
	err := r.db.QueryRow(query, userID).Scan(
		&pattern.ID,
		&pattern.UserID,
		&pattern.WakeTime,
		&pattern.BedTime,
		&pattern.BreakfastTime,
		&pattern.LunchTime,
		&pattern.DinnerTime,
		&pattern.WorkStartTime,
		&pattern.WorkEndTime,
		&pattern.HasDriving,
		&pattern.HasFocusWork,
		&pattern.CreatedAt,
		&pattern.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get life pattern: %w", err)
	}

	return pattern, nil
}

// Upsert inserts the life pattern for a user, or replaces the existing one.
// Each user has at most one pattern.
func (r *LifePatternRepository) Upsert(pattern *models.LifePattern) error {
	query := `
		INSERT INTO life_patterns (user_id, wake_time, bed_time, breakfast_time, lunch_time, dinner_time,
		                           work_start_time, work_end_time, has_driving, has_focus_work, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			wake_time = excluded.wake_time,
			bed_time = excluded.bed_time,
			breakfast_time = excluded.breakfast_time,
			lunch_time = excluded.lunch_time,
			dinner_time = excluded.dinner_time,
			work_start_time = excluded.work_start_time,
			work_end_time = excluded.work_end_time,
			has_driving = excluded.has_driving,
			has_focus_work = excluded.has_focus_work,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.Exec(query,
		pattern.UserID,
		pattern.WakeTime,
		pattern.BedTime,
		pattern.BreakfastTime,
		pattern.LunchTime,
		pattern.DinnerTime,
		pattern.WorkStartTime,
		pattern.WorkEndTime,
		pattern.HasDriving,
		pattern.HasFocusWork,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert life pattern: %w", err)
	}

	// Re-read to pick up the id and timestamps
	saved, err := r.GetByUserID(pattern.UserID)
	if err != nil {
		return err
	}
	*pattern = *saved
	return nil
}
