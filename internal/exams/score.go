package exams

import (
	"math"

	"github.com/opositores/backend/internal/models"
)

const (
	pointsCorrect = 1.0
	penaltyWrong  = 0.25
	scoreScaleMax = 70.0
)

// Score grades a submitted answer map against an exam's question snapshots.
// Each correct answer is worth one point and each incorrect answer subtracts
// a quarter point; unanswered questions score zero. The raw total is clamped
// at zero and scaled to a 0-70 range, rounded to two decimals. Results are
// emitted in snapshot order.
func Score(questions []models.QuestionSnapshot, answers map[int64]*int) models.ScoreResult {
	result := models.ScoreResult{
		TotalQuestions: len(questions),
		Results:        make([]models.QuestionResult, 0, len(questions)),
	}

	raw := 0.0
	for _, q := range questions {
		qr := models.QuestionResult{
			QuestionID:    q.QuestionID,
			QuestionText:  q.Text,
			ThemeID:       q.ThemeID,
			CorrectAnswer: q.CorrectAnswer,
		}
		selected, ok := answers[q.QuestionID]
		switch {
		case !ok || selected == nil:
			qr.Status = models.VerdictUnanswered
			result.Unanswered++
		case *selected == q.CorrectAnswer:
			qr.SelectedAnswer = selected
			qr.Status = models.VerdictCorrect
			qr.IsCorrect = true
			result.Correct++
			raw += pointsCorrect
		default:
			qr.SelectedAnswer = selected
			qr.Status = models.VerdictIncorrect
			result.Incorrect++
			raw -= penaltyWrong
		}
		result.Results = append(result.Results, qr)
	}

	if raw < 0 {
		raw = 0
	}
	result.RawScore = round2(raw)

	if len(questions) > 0 {
		result.FinalScore = round2(raw * scoreScaleMax / float64(len(questions)))
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
