package practicalsets

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

func (h *Handler) CreateSet(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePracticalSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if msg := req.Validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
		return
	}

	userID, _ := r.Context().Value("user_id").(int64)
	set, err := h.store.CreateSet(r.Context(), req, userID)
	if err != nil {
		log.Printf("[practicalsets] create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create practical set"})
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (h *Handler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.store.ListSets(r.Context(), nil)
	if err != nil {
		log.Printf("[practicalsets] list error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list practical sets"})
		return
	}
	if sets == nil {
		sets = []models.PracticalSetSummary{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *Handler) GetSet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid set id"})
		return
	}

	set, err := h.store.GetSet(r.Context(), id)
	if err != nil {
		log.Printf("[practicalsets] get error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch practical set"})
		return
	}
	if set == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "practical set not found"})
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) ListSetsByTheme(w http.ResponseWriter, r *http.Request) {
	themeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid theme id"})
		return
	}

	sets, err := h.store.ListSets(r.Context(), &themeID)
	if err != nil {
		log.Printf("[practicalsets] list by theme error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list practical sets"})
		return
	}
	if sets == nil {
		sets = []models.PracticalSetSummary{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *Handler) GetRandomSet(w http.ResponseWriter, r *http.Request) {
	var themeID *int64
	if raw := r.URL.Query().Get("theme_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid theme_id"})
			return
		}
		themeID = &id
	}

	set, err := h.store.GetRandomSet(r.Context(), themeID)
	if err != nil {
		log.Printf("[practicalsets] random error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch practical set"})
		return
	}
	if set == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "no practical sets available"})
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid set id"})
		return
	}

	deleted, err := h.store.DeactivateSet(r.Context(), id)
	if err != nil {
		log.Printf("[practicalsets] delete error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete practical set"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "practical set not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[practicalsets] encode response error: %v", err)
	}
}
