package questions

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opositores/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if msg := req.Validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	q, err := h.store.CreateQuestion(r.Context(), req, userID)
	if err != nil {
		log.Printf("[questions] create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create question"})
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid question id"})
		return
	}

	q, err := h.store.GetQuestion(r.Context(), id)
	if err != nil {
		log.Printf("[questions] get error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch question"})
		return
	}
	if q == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "question not found"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid question id"})
		return
	}

	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if msg := req.Validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
		return
	}

	q, err := h.store.UpdateQuestion(r.Context(), id, req)
	if err != nil {
		log.Printf("[questions] update error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update question"})
		return
	}
	if q == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "question not found"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid question id"})
		return
	}

	deleted, err := h.store.DeleteQuestion(r.Context(), id)
	if err != nil {
		log.Printf("[questions] delete error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete question"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "question not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	var themeID *int64
	if raw := r.URL.Query().Get("theme_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid theme_id"})
			return
		}
		themeID = &id
	}

	limit := intQueryParam(r, "limit", 50)
	offset := intQueryParam(r, "offset", 0)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	questions, total, err := h.store.ListQuestions(r.Context(), themeID, limit, offset)
	if err != nil {
		log.Printf("[questions] list error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	writeJSON(w, http.StatusOK, models.QuestionListResponse{
		Questions: questions,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

func (h *Handler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	var req models.BulkUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "questions list is empty"})
		return
	}

	result := models.BulkUploadResult{}
	valid := make([]models.CreateQuestionRequest, 0, len(req.Questions))
	for i, q := range req.Questions {
		if msg := q.Validate(); msg != "" {
			result.Errors = append(result.Errors, models.BulkUploadError{Index: i, Error: msg})
			continue
		}
		valid = append(valid, q)
	}
	if len(result.Errors) > 0 {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	inserted, err := h.store.BulkCreate(r.Context(), valid, userID)
	if err != nil {
		log.Printf("[questions] bulk upload error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload questions"})
		return
	}
	result.Inserted = inserted
	writeJSON(w, http.StatusCreated, result)
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
		log.Printf("[questions] encode response error: %v", err)
	}
}
