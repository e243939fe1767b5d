package models

import "testing"

func validQuestion() CreateQuestionRequest {
	return CreateQuestionRequest{
		ThemeID:       1,
		Text:          "¿Qué artículo regula la reforma constitucional?",
		Choices:       []string{"166", "167", "168", "169"},
		CorrectAnswer: 1,
	}
}

func TestCreateQuestionRequestValidate(t *testing.T) {
	if msg := validQuestion().Validate(); msg != "" {
		t.Errorf("valid question rejected: %s", msg)
	}

	q := validQuestion()
	q.ThemeID = 0
	if msg := q.Validate(); msg == "" {
		t.Error("missing theme accepted")
	}

	q = validQuestion()
	q.Text = ""
	if msg := q.Validate(); msg == "" {
		t.Error("empty text accepted")
	}

	q = validQuestion()
	q.Choices = []string{"only one"}
	if msg := q.Validate(); msg == "" {
		t.Error("single choice accepted")
	}

	q = validQuestion()
	q.CorrectAnswer = 4
	if msg := q.Validate(); msg == "" {
		t.Error("out-of-range answer index accepted")
	}

	q = validQuestion()
	q.CorrectAnswer = -1
	if msg := q.Validate(); msg == "" {
		t.Error("negative answer index accepted")
	}
}

func validSet() CreatePracticalSetRequest {
	req := CreatePracticalSetRequest{
		Title:    "Supuesto práctico de cotización",
		ThemeIDs: []int64{4},
	}
	for i := 1; i <= PracticalSetSize; i++ {
		req.Questions = append(req.Questions, CreatePracticalSetQuestion{
			Position:      i,
			Text:          "q",
			Choices:       []string{"a", "b", "c"},
			CorrectAnswer: 0,
		})
	}
	return req
}

func TestCreatePracticalSetRequestValidate(t *testing.T) {
	if msg := validSet().Validate(); msg != "" {
		t.Errorf("valid set rejected: %s", msg)
	}

	req := validSet()
	req.Questions = req.Questions[:14]
	if msg := req.Validate(); msg == "" {
		t.Error("14-question set accepted")
	}

	req = validSet()
	req.Questions[3].Position = 5 // duplicate of the fifth slot
	if msg := req.Validate(); msg == "" {
		t.Error("duplicate position accepted")
	}

	req = validSet()
	req.Questions[0].Position = 16
	if msg := req.Validate(); msg == "" {
		t.Error("out-of-range position accepted")
	}

	req = validSet()
	req.ThemeIDs = nil
	if msg := req.Validate(); msg == "" {
		t.Error("set without themes accepted")
	}
}
