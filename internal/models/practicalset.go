package models

import "time"

// PracticalSetSize is the fixed number of questions in a practical set.
const PracticalSetSize = 15

type PracticalSetQuestion struct {
	ID            int64    `json:"id"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correct_answer"`
}

type PracticalSet struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ThemeIDs    []int64                `json:"theme_ids"`
	Questions   []PracticalSetQuestion `json:"questions"`
	CreatedBy   int64                  `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
	IsActive    bool                   `json:"is_active"`
}

type PracticalSetSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ThemeIDs      []int64   `json:"theme_ids"`
	QuestionCount int       `json:"question_count"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreatePracticalSetQuestion struct {
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correct_answer"`
}

type CreatePracticalSetRequest struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	ThemeIDs    []int64                      `json:"theme_ids"`
	Questions   []CreatePracticalSetQuestion `json:"questions"`
}

// Validate enforces the fixed shape of a practical set: exactly 15 questions
// holding positions 1..15 without gaps, each with a valid answer key.
func (r CreatePracticalSetRequest) Validate() string {
	if r.Title == "" {
		return "title is required"
	}
	if len(r.ThemeIDs) == 0 {
		return "at least one theme is required"
	}
	if len(r.Questions) != PracticalSetSize {
		return "practical sets must have exactly 15 questions"
	}
	seen := make(map[int]bool, PracticalSetSize)
	for _, q := range r.Questions {
		if q.Position < 1 || q.Position > PracticalSetSize || seen[q.Position] {
			return "questions must have positions 1-15 without gaps"
		}
		seen[q.Position] = true
		if len(q.Choices) < 2 {
			return "at least 2 choices are required"
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Choices) {
			return "correct_answer index out of range"
		}
	}
	return ""
}
