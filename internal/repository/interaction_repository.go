package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"dose-planner/internal/database"
	"dose-planner/internal/models"
)

type InteractionRepository struct {
	db *database.DB
}

func NewInteractionRepository(db *database.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create creates a new interaction record
func (r *InteractionRepository) Create(interaction *models.DrugInteraction) error {
	query := `
		INSERT INTO drug_interactions (medicine_a_id, medicine_b_id, severity_level, interaction_type, description, recommendation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	result, err := r.db.Exec(query,
		interaction.MedicineAID,
		interaction.MedicineBID,
		interaction.SeverityLevel,
		interaction.InteractionType,
		interaction.Description,
		interaction.Recommendation,
	)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	interaction.ID = id
	return nil
}

// ListForMedicine returns interactions where the medicine appears on either
// side of the pair, with both medicine names joined in. (A, B) and (B, A)
// describe the same interaction, so both orderings are queried.
func (r *InteractionRepository) ListForMedicine(medicineID int64) ([]*models.DrugInteraction, error) {
	query := `
		SELECT di.id, di.medicine_a_id, di.medicine_b_id, di.severity_level, di.interaction_type,
		       di.description, di.recommendation, di.created_at,
		       ma.name, ma.generic_name, mb.name, mb.generic_name
		FROM drug_interactions di
		JOIN medicines ma ON ma.id = di.medicine_a_id
		JOIN medicines mb ON mb.id = di.medicine_b_id
		WHERE di.medicine_a_id = ? OR di.medicine_b_id = ?
		ORDER BY di.id
	`
	rows, err := r.db.Query(query, medicineID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	return r.scanInteractions(rows)
}

// ListWithinSet returns interactions where both sides are within the given id
// set (a regimen checked against itself). Fewer than two ids yields nil
// without querying.
func (r *InteractionRepository) ListWithinSet(medicineIDs []int64) ([]*models.DrugInteraction, error) {
	if len(medicineIDs) < 2 {
		return nil, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(medicineIDs)), ",")
	query := fmt.Sprintf(`
		SELECT di.id, di.medicine_a_id, di.medicine_b_id, di.severity_level, di.interaction_type,
		       di.description, di.recommendation, di.created_at,
		       ma.name, ma.generic_name, mb.name, mb.generic_name
		FROM drug_interactions di
		JOIN medicines ma ON ma.id = di.medicine_a_id
		JOIN medicines mb ON mb.id = di.medicine_b_id
		WHERE di.medicine_a_id IN (%s) AND di.medicine_b_id IN (%s)
		ORDER BY di.id
	`, placeholders, placeholders)

	args := make([]interface{}, 0, len(medicineIDs)*2)
	for _, id := range medicineIDs {
		args = append(args, id)
	}
	for _, id := range medicineIDs {
		args = append(args, id)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions within set: %w", err)
	}
	defer rows.Close()

	return r.scanInteractions(rows)
}

// scanInteractions is a helper to scan interaction rows with joined medicines
func (r *InteractionRepository) scanInteractions(rows *sql.Rows) ([]*models.DrugInteraction, error) {
	var interactions []*models.DrugInteraction
	for rows.Next() {
		var interaction models.DrugInteraction
		var medA, medB models.Medicine
		err := rows.Scan(
			&interaction.ID,
			&interaction.MedicineAID,
			&interaction.MedicineBID,
			&interaction.SeverityLevel,
			&interaction.InteractionType,
			&interaction.Description,
			&interaction.Recommendation,
			&interaction.CreatedAt,
			&medA.Name,
			&medA.GenericName,
			&medB.Name,
			&medB.GenericName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		medA.ID = interaction.MedicineAID
		medB.ID = interaction.MedicineBID
		interaction.MedicineA = &medA
		interaction.MedicineB = &medB
		interactions = append(interactions, &interaction)
	}

	return interactions, rows.Err()
}
