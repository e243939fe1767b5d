package analytics

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/opositores/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetFailureAnalytics(w http.ResponseWriter, r *http.Request) {
	var themeID *int64
	if raw := r.URL.Query().Get("theme_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid theme_id"})
			return
		}
		themeID = &id
	}
	top := intQueryParam(r, "top", 10)
	if top < 1 || top > 100 {
		top = 10
	}

	userID, _ := r.Context().Value("user_id").(int64)
	list, err := h.service.GetFailureAnalytics(r.Context(), userID, themeID, top)
	if err != nil {
		log.Printf("[analytics] failures error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load analytics"})
		return
	}
	if list == nil {
		list = []models.FailureAnalytics{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GenerateStudyPlan(w http.ResponseWriter, r *http.Request) {
	threshold := floatQueryParam(r, "threshold", WeakThreshold)
	if threshold <= 0 || threshold > 100 {
		threshold = WeakThreshold
	}
	maxThemes := intQueryParam(r, "max_themes", 10)
	if maxThemes < 1 || maxThemes > 50 {
		maxThemes = 10
	}

	userID, _ := r.Context().Value("user_id").(int64)
	plan, err := h.service.GenerateStudyPlan(r.Context(), userID, threshold, maxThemes)
	if err != nil {
		log.Printf("[analytics] study plan error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate study plan"})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) GetOverallStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(int64)
	stats, err := h.service.GetOverallStats(r.Context(), userID)
	if err != nil {
		log.Printf("[analytics] overall stats error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
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

func floatQueryParam(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[analytics] encode response error: %v", err)
	}
}
