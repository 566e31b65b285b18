package finalreview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"appraisal/internal/domain/appraisal"
)

// renderReport writes the locked-record summary PDF. When an encryption
// key is configured the plaintext file is replaced by an .enc copy.
func (s *Service) renderReport(ctx context.Context, review FinalReview, app appraisal.Appraisal) (string, error) {
	emp, err := s.directory.GetEmployee(ctx, app.EmployeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.reportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.reportDir, app.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Final Appraisal Record")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", emp.FirstName, emp.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", emp.Email))
	pdf.Ln(7)
	if app.FinalScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Final score: %.3f (%s)", *app.FinalScore, app.RatingBand))
		pdf.Ln(7)
	}
	if review.RecommendationType != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Recommendation: %s / %s", review.RecommendationType, review.RecommendationAction))
		pdf.Ln(7)
	}
	pdf.Ln(3)
	slots := []struct {
		label string
		sig   SignatureSlot
	}{
		{"Employee", review.Employee},
		{"Supervisor", review.Supervisor},
		{"Divisional head", review.Divisional},
	}
	for _, entry := range slots {
		if entry.sig.Signed && entry.sig.SignedAt != nil {
			pdf.Cell(0, 8, fmt.Sprintf("%s signed at %s", entry.label, entry.sig.SignedAt.Format("2006-01-02 15:04")))
			pdf.Ln(7)
		}
	}
	if review.HRFinalizedAt != nil {
		pdf.Ln(3)
		pdf.Cell(0, 8, fmt.Sprintf("Locked by HR at %s", review.HRFinalizedAt.Format("2006-01-02 15:04")))
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}
