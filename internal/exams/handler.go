package exams

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opositores/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GenerateExam(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	exam, err := h.service.Assemble(r.Context(), req, userID)
	if err != nil {
		h.writeServiceError(w, "generate", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ExamSummary{
		ID:            exam.ID,
		Type:          exam.Type,
		Name:          exam.Name,
		ThemeIDs:      exam.ThemeIDs,
		QuestionCount: len(exam.Questions),
		CreatedBy:     exam.CreatedBy,
		CreatedAt:     exam.CreatedAt,
	})
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	examID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid exam id"})
		return
	}

	exam, err := h.service.GetExam(r.Context(), examID)
	if err != nil {
		h.writeServiceError(w, "get exam", err)
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.StartAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.ExamID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_id is required"})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	attempt, exam, err := h.service.Start(r.Context(), req.ExamID, userID)
	if err != nil {
		h.writeServiceError(w, "start", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.StartAttemptResponse{
		ID:        attempt.ID,
		ExamID:    attempt.ExamID,
		StartedAt: attempt.StartedAt,
		Exam:      exam,
	})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid attempt id"})
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.QuestionID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question_id is required"})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	if err := h.service.SubmitAnswer(r.Context(), attemptID, userID, req.QuestionID, req.SelectedAnswer); err != nil {
		h.writeServiceError(w, "submit answer", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SubmitAnswerAck{
		Message:    "answer recorded",
		QuestionID: req.QuestionID,
	})
}

func (h *Handler) FinishAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid attempt id"})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	result, err := h.service.Finish(r.Context(), attemptID, userID)
	if err != nil {
		h.writeServiceError(w, "finish", err)
		return
	}

	writeJSON(w, http.StatusOK, models.FinishAttemptResponse{
		AttemptID: attemptID,
		Score:     result.FinalScore,
		Details:   result,
	})
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	attemptID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid attempt id"})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	attempt, err := h.service.GetResults(r.Context(), attemptID, userID)
	if err != nil {
		h.writeServiceError(w, "get results", err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 20)
	offset := intQueryParam(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	userID, _ := r.Context().Value("user_id").(int64)
	attempts, total, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeServiceError(w, "history", err)
		return
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	writeJSON(w, http.StatusOK, models.AttemptHistoryResponse{Attempts: attempts, Total: total})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// invalid input and lifecycle violations are 400, missing resources 404,
// ownership violations 403, everything else 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var insufficient *InsufficientQuestionsError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: insufficient.Error()})
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAttemptFinished):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "you do not own this attempt"})
	default:
		log.Printf("[exams] %s error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal error"})
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func intQueryParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[exams] encode response error: %v", err)
	}
}
