package importer

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"dose-planner/internal/classify"
	"dose-planner/internal/models"
	"dose-planner/internal/repository"
)

// MedicineStore is the subset of the medicine repository the importer needs.
type MedicineStore interface {
	Create(medicine *models.Medicine) error
	GetByName(name string) (*models.Medicine, error)
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer loads medicine reference data from CSV, classifying each record's
// dosing characteristics as it goes.
type Importer struct {
	store MedicineStore
}

func NewImporter(store MedicineStore) *Importer {
	return &Importer{store: store}
}

// columnAliases maps accepted CSV header spellings to canonical field names.
var columnAliases = map[string]string{
	"name":          "name",
	"product_name":  "name",
	"item_name":     "name",
	"generic_name":  "generic_name",
	"generic":       "generic_name",
	"company":       "company",
	"manufacturer":  "company",
	"class_name":    "class_name",
	"class":         "class_name",
	"category":      "class_name",
	"ingredients":   "ingredients",
	"ingredient":    "ingredients",
	"effect":        "effect",
	"efficacy":      "effect",
	"indications":   "effect",
	"usage":         "usage",
	"dosage":        "usage",
	"directions":    "usage",
	"side_effects":  "side_effects",
	"adverse":       "side_effects",
	"precautions":   "precautions",
	"warnings":      "precautions",
	"caution":       "precautions",
}

// ImportCSV reads medicine records from r and stores the new ones. The first
// row must be a header; unrecognized columns are ignored. A bad row is
// counted and skipped, never fatal; rows whose name already exists are
// skipped so re-running an import is safe.
func (imp *Importer) ImportCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	fields := make([]string, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		fields[i] = columnAliases[key]
	}

	result := &Result{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Failed++
			log.Printf("import: line %d: %v", line, err)
			continue
		}

		raw := make(map[string]string, len(fields))
		for i, value := range record {
			if i < len(fields) && fields[i] != "" {
				raw[fields[i]] = value
			}
		}

		switch err := imp.importRecord(raw); err {
		case nil:
			result.Imported++
		case errBlankName, errDuplicate:
			result.Skipped++
		default:
			result.Failed++
			log.Printf("import: line %d (%q): %v", line, raw["name"], err)
		}

		if processed := result.Imported + result.Skipped + result.Failed; processed%50 == 0 {
			log.Printf("import: processed %d records (%d imported, %d skipped, %d failed)",
				processed, result.Imported, result.Skipped, result.Failed)
		}
	}

	return result, nil
}

var (
	errBlankName = fmt.Errorf("blank name")
	errDuplicate = fmt.Errorf("duplicate name")
)

func (imp *Importer) importRecord(raw map[string]string) error {
	attrs := classify.Extract(raw)
	if attrs.Name == "" {
		return errBlankName
	}

	if _, err := imp.store.GetByName(attrs.Name); err == nil {
		return errDuplicate
	} else if err != repository.ErrNotFound {
		return err
	}

	medicine := &models.Medicine{
		Name:              attrs.Name,
		GenericName:       nullString(attrs.GenericName),
		Company:           nullString(attrs.Company),
		ClassName:         nullString(attrs.ClassName),
		Ingredients:       nullString(attrs.Ingredients),
		Effect:            nullString(attrs.Effect),
		Usage:             nullString(attrs.Usage),
		SideEffects:       nullString(attrs.SideEffects),
		Precautions:       nullString(attrs.Precautions),
		SleepInducing:     attrs.SleepInducing,
		AlertnessEffect:   attrs.AlertnessEffect,
		StomachIrritation: attrs.StomachIrritation,
		MealTiming:        attrs.MealTiming,
	}

	return imp.store.Create(medicine)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
