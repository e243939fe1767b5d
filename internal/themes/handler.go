package themes

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

func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	var part *models.ThemePart
	if p := r.URL.Query().Get("part"); p != "" {
		tp := models.ThemePart(p)
		if tp != models.PartGeneral && tp != models.PartSpecific {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "part must be 'GENERAL' or 'SPECIFIC'"})
			return
		}
		part = &tp
	}

	themes, err := h.store.ListThemes(r.Context(), part)
	if err != nil {
		log.Printf("[handler] ListThemes error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list themes"})
		return
	}

	if themes == nil {
		themes = []models.Theme{}
	}
	writeJSON(w, http.StatusOK, themes)
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid theme ID"})
		return
	}

	theme, err := h.store.GetTheme(r.Context(), id)
	if err != nil {
		log.Printf("[handler] GetTheme error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get theme"})
		return
	}
	if theme == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Theme not found"})
		return
	}

	writeJSON(w, http.StatusOK, theme)
}

func (h *Handler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req models.CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Code and name are required"})
		return
	}
	if req.Part != models.PartGeneral && req.Part != models.PartSpecific {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "part must be 'GENERAL' or 'SPECIFIC'"})
		return
	}

	theme, err := h.store.CreateTheme(r.Context(), req)
	if err != nil {
		log.Printf("[handler] CreateTheme error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create theme"})
		return
	}

	writeJSON(w, http.StatusCreated, theme)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
