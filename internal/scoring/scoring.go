// Package scoring grades a set of answers against a quiz definition.
package scoring

import (
	"math"

	"assessment-engine/internal/domain"
)

// Score grades answers against every question of the quiz. It is a pure
// function: identical inputs always produce identical grades.
//
// Ungraded questions (short answer) count toward TotalPoints but never toward
// CorrectPoints or CorrectCount. Unanswered questions are judged against an
// empty response.
func Score(quiz domain.Quiz, answers domain.Answers) domain.Grade {
	grade := domain.Grade{
		TotalQuestions: len(quiz.Questions),
		Outcomes:       make([]domain.Outcome, 0, len(quiz.Questions)),
	}

	for _, q := range quiz.Questions {
		h := q.Head()
		verdict := q.Judge(answers[h.ID])

		outcome := domain.Outcome{QuestionID: h.ID, Verdict: verdict, Points: h.Points}
		if verdict == domain.VerdictCorrect {
			outcome.Awarded = h.Points
			grade.CorrectPoints += h.Points
			grade.CorrectCount++
		}
		grade.TotalPoints += h.Points
		grade.Outcomes = append(grade.Outcomes, outcome)
	}

	grade.Score = Percent(grade.CorrectPoints, grade.TotalPoints)
	grade.Passed = grade.Score >= quiz.PassingScore
	return grade
}

// Percent returns round(part/total*100), or 0 when total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
