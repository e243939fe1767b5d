package models

import "time"

type Question struct {
	ID            int64     `json:"id"`
	ThemeID       int64     `json:"theme_id"`
	Text          string    `json:"text"`
	Choices       []string  `json:"choices"`
	CorrectAnswer int       `json:"correct_answer"`
	CreatedBy     int64     `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateQuestionRequest struct {
	ThemeID       int64    `json:"theme_id"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correct_answer"`
}

// Validate checks the snapshot invariant: at least two choices and a
// correct-answer index inside the choice list.
func (r CreateQuestionRequest) Validate() string {
	if r.ThemeID <= 0 {
		return "theme_id is required"
	}
	if r.Text == "" {
		return "text is required"
	}
	if len(r.Choices) < 2 {
		return "at least 2 choices are required"
	}
	if r.CorrectAnswer < 0 || r.CorrectAnswer >= len(r.Choices) {
		return "correct_answer index out of range"
	}
	return ""
}

type BulkUploadRequest struct {
	Questions []CreateQuestionRequest `json:"questions"`
}

type BulkUploadError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkUploadResult struct {
	Inserted int               `json:"inserted"`
	Errors   []BulkUploadError `json:"errors,omitempty"`
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
