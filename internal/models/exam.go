package models

import "time"

type ExamType string

const (
	ExamTheoryTopic ExamType = "THEORY_TOPIC"
	ExamTheoryMixed ExamType = "THEORY_MIXED"
	ExamPractical   ExamType = "PRACTICAL"
	ExamSimulacro   ExamType = "SIMULACRO"
)

var ValidExamTypes = map[ExamType]bool{
	ExamTheoryTopic: true,
	ExamTheoryMixed: true,
	ExamPractical:   true,
	ExamSimulacro:   true,
}

// QuestionSnapshot is an immutable copy of a question frozen into an exam at
// creation time, so later edits to the question bank never change an exam's
// content or grading key.
type QuestionSnapshot struct {
	QuestionID    int64    `json:"question_id"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correct_answer"`
	ThemeID       int64    `json:"theme_id"`
}

type Exam struct {
	ID        int64              `json:"id"`
	Type      ExamType           `json:"type"`
	Name      string             `json:"name"`
	ThemeIDs  []int64            `json:"theme_ids"`
	Questions []QuestionSnapshot `json:"questions"`
	CreatedBy int64              `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
}

// Attempt binds a user to an exam. Answers map question id to the selected
// choice index; a nil value means the user explicitly cleared the answer.
// Once FinishedAt is set the attempt is immutable.
type Attempt struct {
	ID         int64          `json:"id"`
	ExamID     int64          `json:"exam_id"`
	UserID     int64          `json:"user_id"`
	Answers    map[int64]*int `json:"answers"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	Score      *float64       `json:"score"`
	Details    *ScoreResult   `json:"details"`
}

type Verdict string

const (
	VerdictCorrect    Verdict = "correct"
	VerdictIncorrect  Verdict = "incorrect"
	VerdictUnanswered Verdict = "unanswered"
)

// QuestionResult is the per-question grading record. The ordered result list
// is the input contract for analytics recording.
type QuestionResult struct {
	QuestionID     int64   `json:"question_id"`
	QuestionText   string  `json:"question_text"`
	ThemeID        int64   `json:"theme_id"`
	SelectedAnswer *int    `json:"selected_answer"`
	CorrectAnswer  int     `json:"correct_answer"`
	IsCorrect      bool    `json:"is_correct"`
	Status         Verdict `json:"status"`
}

type ScoreResult struct {
	TotalQuestions int              `json:"total_questions"`
	Correct        int              `json:"correct"`
	Incorrect      int              `json:"incorrect"`
	Unanswered     int              `json:"unanswered"`
	RawScore       float64          `json:"raw_score"`
	FinalScore     float64          `json:"final_score"`
	Results        []QuestionResult `json:"results"`
}

// ── Request/Response Types ───────────────────────────────

type GenerateExamRequest struct {
	Type          ExamType `json:"type"`
	Name          string   `json:"name"`
	ThemeIDs      []int64  `json:"theme_ids"`
	QuestionCount int      `json:"question_count"`
}

type ExamSummary struct {
	ID            int64     `json:"id"`
	Type          ExamType  `json:"type"`
	Name          string    `json:"name"`
	ThemeIDs      []int64   `json:"theme_ids"`
	QuestionCount int       `json:"question_count"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type StartAttemptRequest struct {
	ExamID int64 `json:"exam_id"`
}

type StartAttemptResponse struct {
	ID        int64     `json:"id"`
	ExamID    int64     `json:"exam_id"`
	StartedAt time.Time `json:"started_at"`
	Exam      *Exam     `json:"exam"`
}

type SubmitAnswerRequest struct {
	QuestionID     int64 `json:"question_id"`
	SelectedAnswer *int  `json:"selected_answer"`
}

type SubmitAnswerAck struct {
	Message    string `json:"message"`
	QuestionID int64  `json:"question_id"`
}

type FinishAttemptResponse struct {
	AttemptID int64        `json:"attempt_id"`
	Score     float64      `json:"score"`
	Details   *ScoreResult `json:"details"`
}

type AttemptHistoryResponse struct {
	Attempts []Attempt `json:"attempts"`
	Total    int       `json:"total"`
}
