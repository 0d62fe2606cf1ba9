package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"auralis/db"
)

// WriteSessionReport renders a session's record as a printable PDF.
func WriteSessionReport(w io.Writer, patient db.Patient, session db.Session) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, fmt.Sprintf("Session %d — %s", session.SessionNumber, patient.Name))
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, fmt.Sprintf("Date: %s", session.SessionDate.Format("2006-01-02 15:04")))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Language: %s", session.Language))
	doc.Ln(6)
	if session.Duration > 0 {
		doc.Cell(0, 6, fmt.Sprintf("Duration: %d min", session.Duration))
		doc.Ln(6)
	}
	doc.Ln(4)

	sections := []struct {
		title string
		body  string
	}{
		{"Transcript", session.OriginalTranscription},
		{"Translated Transcript", session.TranslatedTranscription},
		{"Notes", session.Notes},
		{"Diagnosis", session.Diagnosis},
		{"Treatment Plan", session.TreatmentPlan},
	}

	for _, sec := range sections {
		if sec.body == "" {
			continue
		}
		doc.SetFont("Helvetica", "B", 12)
		doc.Cell(0, 8, sec.title)
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 5, sec.body, "", "L", false)
		doc.Ln(4)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
