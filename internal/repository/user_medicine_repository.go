package repository

import (
	"database/sql"
	"fmt"

	"dose-planner/internal/database"
	"dose-planner/internal/models"
)

type UserMedicineRepository struct {
	db *database.DB
}

func NewUserMedicineRepository(db *database.DB) *UserMedicineRepository {
	return &UserMedicineRepository{db: db}
}

// Create adds a medicine to a user's regimen
func (r *UserMedicineRepository) Create(um *models.UserMedicine) error {
	query := `
		INSERT INTO user_medicines (user_id, medicine_id, dosage, frequency, start_date, end_date,
		                            notes, recommended_times, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.Exec(query,
		um.UserID,
		um.MedicineID,
		um.Dosage,
		um.Frequency,
		um.StartDate,
		um.EndDate,
		um.Notes,
		um.RecommendedTimes,
		um.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create user medicine: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	um.ID = id
	return nil
}

// GetByID retrieves a regimen entry by ID, scoped to the owning user
func (r *UserMedicineRepository) GetByID(id, userID int64) (*models.UserMedicine, error) {
	query := userMedicineSelect + ` WHERE um.id = ? AND um.user_id = ?`
	row := r.db.QueryRow(query, id, userID)
	um, err := scanUserMedicineRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user medicine: %w", err)
	}
	return um, nil
}

// ListActiveByUser returns the user's active regimen entries, newest first,
// with the medicine joined in.
func (r *UserMedicineRepository) ListActiveByUser(userID int64) ([]*models.UserMedicine, error) {
	query := userMedicineSelect + `
		WHERE um.user_id = ? AND um.status = ?
		ORDER BY um.created_at DESC, um.id DESC`
	rows, err := r.db.Query(query, userID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list user medicines: %w", err)
	}
	defer rows.Close()

	var entries []*models.UserMedicine
	for rows.Next() {
		um, err := scanUserMedicineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user medicine: %w", err)
		}
		entries = append(entries, um)
	}

	return entries, rows.Err()
}

// GetActiveByUserAndMedicine returns the active regimen entry for a medicine,
// or ErrNotFound when the user is not currently taking it.
func (r *UserMedicineRepository) GetActiveByUserAndMedicine(userID, medicineID int64) (*models.UserMedicine, error) {
	query := userMedicineSelect + ` WHERE um.user_id = ? AND um.medicine_id = ? AND um.status = ?`
	row := r.db.QueryRow(query, userID, medicineID, models.StatusActive)
	um, err := scanUserMedicineRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user medicine: %w", err)
	}
	return um, nil
}

// Remove marks an active regimen entry as removed. The row stays behind for
// history; only active entries can be removed.
func (r *UserMedicineRepository) Remove(id, userID int64) error {
	query := `
		UPDATE user_medicines
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status = ?
	`
	result, err := r.db.Exec(query, models.StatusRemoved, id, userID, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to remove user medicine: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

const userMedicineSelect = `
	SELECT um.id, um.user_id, um.medicine_id, um.dosage, um.frequency, um.start_date, um.end_date,
	       um.notes, um.recommended_times, um.status, um.created_at, um.updated_at,
	       ` + medicineColumnsPrefixed + `
	FROM user_medicines um
	JOIN medicines m ON m.id = um.medicine_id`

func scanUserMedicineRow(row rowScanner) (*models.UserMedicine, error) {
	um := &models.UserMedicine{}
	med := &models.Medicine{}
	err := row.Scan(
		&um.ID,
		&um.UserID,
		&um.MedicineID,
		&um.Dosage,
		&um.Frequency,
		&um.StartDate,
		&um.EndDate,
		&um.Notes,
		&um.RecommendedTimes,
		&um.Status,
		&um.CreatedAt,
		&um.UpdatedAt,
		&med.ID,
		&med.Name,
		&med.GenericName,
		&med.Company,
		&med.ClassName,
		&med.Ingredients,
		&med.Effect,
		&med.Usage,
		&med.SideEffects,
		&med.Precautions,
		&med.SleepInducing,
		&med.AlertnessEffect,
		&med.StomachIrritation,
		&med.MealTiming,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	um.Medicine = med
	return um, nil
}
