package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

// Renderer builds printable documents for patients.
type Renderer struct {
	title string
	now   func() time.Time
}

func NewRenderer(title string) *Renderer {
	return &Renderer{title: title, now: time.Now}
}

// Prescription renders a prescription as an A4 PDF.
func (r *Renderer) Prescription(rx *model.PrescriptionDetail, patient *model.Patient) ([]byte, error) {
	var meds []model.Medication
	if len(rx.Medications) > 0 {
		if err := json.Unmarshal(rx.Medications, &meds); err != nil {
			return nil, fmt.Errorf("failed to decode medications: %w", err)
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Prescription "+rx.ID.String(), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 70, 140)
	pdf.CellFormat(0, 10, r.title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Prescription", "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	date := rx.CreatedAt.Format(model.DateLayout)
	if rx.AppointmentDate != nil {
		date = *rx.AppointmentDate
	}
	doctor := fmt.Sprintf("Dr. %s %s", rx.DoctorFirstName, rx.DoctorLastName)
	if rx.Specialization != nil {
		doctor += " (" + *rx.Specialization + ")"
	}

	detailRow(pdf, "Prescription ID", rx.ID.String())
	detailRow(pdf, "Date", date)
	detailRow(pdf, "Doctor", doctor)
	detailRow(pdf, "Patient", fmt.Sprintf("%s %s", patient.FirstName, patient.LastName))
	if patient.DateOfBirth != nil {
		detailRow(pdf, "Date of birth", *patient.DateOfBirth)
	}
	if patient.Allergies != nil {
		detailRow(pdf, "Allergies", *patient.Allergies)
	}
	pdf.Ln(4)

	widths := []float64{70, 40, 40, 40}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Medication", "Dosage", "Frequency", "Duration"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, m := range meds {
		for i, v := range []string{m.Name, m.Dosage, m.Frequency, m.Duration} {
			pdf.CellFormat(widths[i], 8, v, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if rx.Instructions != nil && *rx.Instructions != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Instructions", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, *rx.Instructions, "", "L", false)
	}

	pdf.SetY(pdf.GetY() + 12)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 10, "Generated "+r.now().UTC().Format(time.RFC1123), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render prescription: %w", err)
	}
	return buf.Bytes(), nil
}

func detailRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 8, label, "1", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, value, "1", 1, "", false, 0, "")
}
