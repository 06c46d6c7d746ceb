package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"assessment-engine/internal/domain"
	"github.com/xuri/excelize/v2"
)

const attemptsSheet = "Attempts"

// WriteAttemptsXLSX exports recorded attempts at a quiz, one row per attempt.
func WriteAttemptsXLSX(w io.Writer, quiz domain.Quiz, attempts []domain.AttemptResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attemptsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(attemptsSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	headers := []interface{}{"Attempt", "User", "Score", "Passed", "Correct", "Questions", "Points", "Total points", "Time spent (s)", "Completed at"}
	for _, q := range quiz.Questions {
		headers = append(headers, q.Head().ID)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i, a := range attempts {
		passed := "no"
		if a.Passed {
			passed = "yes"
		}
		row := []interface{}{
			a.ID, sanitizeForExcel(a.UserID), a.Score, passed, a.CorrectCount, a.TotalQuestions,
			a.CorrectPoints, a.TotalPoints, int(a.TimeSpent().Seconds()), a.CompletedAt.UTC().Format(time.RFC3339),
		}
		for _, q := range quiz.Questions {
			row = append(row, sanitizeForExcel(responseText(a.Answers[q.Head().ID])))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Write(w)
}

func responseText(r domain.Response) string {
	if r.IsMulti() {
		return strings.Join(r.Values, ", ")
	}
	return r.Value
}

// sanitizeForExcel guards user text against formula injection.
func sanitizeForExcel(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
