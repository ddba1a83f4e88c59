package repository

import (
	"database/sql"
	"fmt"

	"dose-planner/internal/database"
	"dose-planner/internal/models"
)

const medicineColumns = `id, name, generic_name, company, class_name, ingredients,
	       effect, usage, side_effects, precautions,
	       sleep_inducing, alertness_effect, stomach_irritation, meal_timing,
	       created_at, updated_at`

const medicineColumnsPrefixed = `m.id, m.name, m.generic_name, m.company, m.class_name, m.ingredients,
	       m.effect, m.usage, m.side_effects, m.precautions,
	       m.sleep_inducing, m.alertness_effect, m.stomach_irritation, m.meal_timing,
	       m.created_at, m.updated_at`

type MedicineRepository struct {
	db *database.DB
}

func NewMedicineRepository(db *database.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

// Create creates a new medicine reference record
func (r *MedicineRepository) Create(medicine *models.Medicine) error {
	query := `
		INSERT INTO medicines (name, generic_name, company, class_name, ingredients,
			effect, usage, side_effects, precautions,
			sleep_inducing, alertness_effect, stomach_irritation, meal_timing,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.Exec(query,
		medicine.Name,
		medicine.GenericName,
		medicine.Company,
		medicine.ClassName,
		medicine.Ingredients,
		medicine.Effect,
		medicine.Usage,
		medicine.SideEffects,
		medicine.Precautions,
		medicine.SleepInducing,
		medicine.AlertnessEffect,
		medicine.StomachIrritation,
		medicine.MealTiming,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	medicine.ID = id
	return nil
}

// GetByID retrieves a medicine by ID
func (r *MedicineRepository) GetByID(id int64) (*models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = ?`
	medicine, err := r.scanMedicineRow(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	return medicine, nil
}

// GetByName retrieves a medicine by exact name (import-time dedup key)
func (r *MedicineRepository) GetByName(name string) (*models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE name = ?`
	medicine, err := r.scanMedicineRow(r.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine by name: %w", err)
	}
	return medicine, nil
}

// Search finds medicines whose name or generic name contains the query,
// ordered by name.
func (r *MedicineRepository) Search(q string, limit int) ([]*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE name LIKE ? OR generic_name LIKE ?
		ORDER BY name
		LIMIT ?
	`
	pattern := "%" + q + "%"
	rows, err := r.db.Query(query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search medicines: %w", err)
	}
	defer rows.Close()

	return r.scanMedicines(rows)
}

// List retrieves all medicines ordered by name
func (r *MedicineRepository) List() ([]*models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()

	return r.scanMedicines(rows)
}

// Count returns the number of stored medicines
func (r *MedicineRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM medicines`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *MedicineRepository) scanMedicineRow(row rowScanner) (*models.Medicine, error) {
	var medicine models.Medicine
	err := row.Scan(
		&medicine.ID,
		&medicine.Name,
		&medicine.GenericName,
		&medicine.Company,
		&medicine.ClassName,
		&medicine.Ingredients,
		&medicine.Effect,
		&medicine.Usage,
		&medicine.SideEffects,
		&medicine.Precautions,
		&medicine.SleepInducing,
		&medicine.AlertnessEffect,
		&medicine.StomachIrritation,
		&medicine.MealTiming,
		&medicine.CreatedAt,
		&medicine.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &medicine, nil
}

// scanMedicines is a helper to scan multiple medicine rows
func (r *MedicineRepository) scanMedicines(rows *sql.Rows) ([]*models.Medicine, error) {
	var medicines []*models.Medicine
	for rows.Next() {
		medicine, err := r.scanMedicineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, medicine)
	}

	return medicines, rows.Err()
}
