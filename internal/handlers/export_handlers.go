package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"dose-planner/internal/middleware"
	"dose-planner/internal/models"
	"dose-planner/internal/services"
)

// HandleExportCSV generates a CSV export of the user's active regimen
func HandleExportCSV(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		entries, err := regimen.List(userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load regimen")
			return
		}

		var csvBuffer bytes.Buffer
		csvWriter := csv.NewWriter(&csvBuffer)

		header := []string{"Medicine", "Generic Name", "Class", "Dosage", "Frequency", "Recommended Times", "Start Date", "Notes"}
		if err := csvWriter.Write(header); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate CSV")
			return
		}

		for _, um := range entries {
			record := []string{
				medicineName(um),
				medicineGeneric(um),
				medicineClass(um),
				um.Dosage,
				fmt.Sprintf("%d", um.Frequency),
				strings.Join(um.RecommendedTimeList(), " "),
				um.StartDate.Format("2006-01-02"),
				um.Notes.String,
			}
			if err := csvWriter.Write(record); err != nil {
				respondError(w, http.StatusInternalServerError, "Failed to generate CSV")
				return
			}
		}

		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate CSV")
			return
		}

		filename := fmt.Sprintf("dose-planner-regimen-%s.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", csvBuffer.Len()))
		w.Write(csvBuffer.Bytes())
	}
}

// HandleExportPDF generates a PDF daily dosing schedule for the user's
// active regimen
func HandleExportPDF(regimen *services.RegimenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())

		entries, err := regimen.List(userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load regimen")
			return
		}

		pdfBytes, err := generateSchedulePDF(entries)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate PDF")
			return
		}

		filename := fmt.Sprintf("dose-planner-schedule-%s.pdf", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
		w.Write(pdfBytes)
	}
}

// scheduleSlot groups the medicines due at one clock time
type scheduleSlot struct {
	Time      string
	Medicines []string
}

// buildSchedule flattens regimen entries into a chronological dosing
// schedule. Entries without cached times are listed under "unscheduled".
func buildSchedule(entries []*models.UserMedicine) ([]scheduleSlot, []string) {
	byTime := make(map[string][]string)
	var unscheduled []string

	for _, um := range entries {
		label := medicineName(um)
		if um.Dosage != "" {
			label += " (" + um.Dosage + ")"
		}

		times := um.RecommendedTimeList()
		if len(times) == 0 {
			unscheduled = append(unscheduled, label)
			continue
		}
		for _, t := range times {
			byTime[t] = append(byTime[t], label)
		}
	}

	slots := make([]scheduleSlot, 0, len(byTime))
	for t, meds := range byTime {
		slots = append(slots, scheduleSlot{Time: t, Medicines: meds})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })

	return slots, unscheduled
}

func generateSchedulePDF(entries []*models.UserMedicine) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Daily Dosing Schedule", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Daily Dosing Schedule")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s - %d active medicines", time.Now().Format("2006-01-02"), len(entries)))
	pdf.Ln(12)

	slots, unscheduled := buildSchedule(entries)

	if len(slots) == 0 && len(unscheduled) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No active medicines.")
	}

	for _, slot := range slots {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(25, 8, slot.Time)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 8, strings.Join(slot.Medicines, ", "), "", "L", false)
		pdf.Ln(2)
	}

	if len(unscheduled) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "No scheduled time")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 8, strings.Join(unscheduled, ", "), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func medicineName(um *models.UserMedicine) string {
	if um.Medicine != nil {
		return um.Medicine.Name
	}
	return fmt.Sprintf("medicine %d", um.MedicineID)
}

func medicineGeneric(um *models.UserMedicine) string {
	if um.Medicine != nil {
		return um.Medicine.GenericName.String
	}
	return ""
}

func medicineClass(um *models.UserMedicine) string {
	if um.Medicine != nil {
		return um.Medicine.ClassName.String
	}
	return ""
}
