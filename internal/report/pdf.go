package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the results screen as a one-document summary.
func (r *Reporter) WritePDF(w io.Writer) error {
	s := r.Report()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(s.QuizTitle), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(s.QuizTitle))
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(s.Headline))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, tr(s.Message))
	pdf.Ln(12)

	rows := [][2]string{
		{"Attempt", s.AttemptID},
		{"User", r.result.UserID},
		{"Score", fmt.Sprintf("%d%%", s.Score)},
		{"Passing score", fmt.Sprintf("%d%%", s.PassingScore)},
		{"Correct answers", fmt.Sprintf("%d/%d", s.CorrectCount, s.TotalQuestions)},
		{"Points", fmt.Sprintf("%d/%d", s.CorrectPoints, s.TotalPoints)},
		{"Time spent", (time.Duration(s.TimeSpentSeconds) * time.Second).String()},
		{"Completed", r.result.CompletedAt.UTC().Format(time.RFC1123)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}

	if len(s.Review) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Review")
		pdf.Ln(10)
		for i, q := range s.Review {
			pdf.SetFont("Arial", "B", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Title)), "", "L", false)
			pdf.SetFont("Arial", "", 10)
			line := fmt.Sprintf("%s (%d pt)", q.Verdict, q.Points)
			if q.CorrectAnswer != "" {
				line += " - correct answer: " + q.CorrectAnswer
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
			if q.Explanation != "" {
				pdf.MultiCell(0, 5, tr(q.Explanation), "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	return pdf.Output(w)
}
