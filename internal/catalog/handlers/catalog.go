package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"food-court/internal/catalog/repository"
	"food-court/internal/common/logger"
)

type CatalogHandler struct {
	repo repository.Catalog
	lg   *logger.Logger
}

func NewCatalogHandler(repo repository.Catalog, lg *logger.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, lg: lg}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/venues", h.listVenues)
	mux.HandleFunc("GET /api/venues/{venueId}/stalls", h.listStalls)
	mux.HandleFunc("GET /api/stalls/{stallId}/menu", h.listMenu)
}

func (h *CatalogHandler) listVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.repo.ListVenues(r.Context())
	if err != nil {
		h.fail(w, "list_venues_failed", err)
		return
	}
	h.ok(w, venues)
}

func (h *CatalogHandler) listStalls(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(r.PathValue("venueId"), 10, 64)
	if err != nil {
		http.Error(w, "bad venue id", http.StatusBadRequest)
		return
	}
	stalls, err := h.repo.ListStalls(r.Context(), venueID)
	if err != nil {
		h.fail(w, "list_stalls_failed", err)
		return
	}
	h.ok(w, stalls)
}

func (h *CatalogHandler) listMenu(w http.ResponseWriter, r *http.Request) {
	stallID, err := strconv.ParseInt(r.PathValue("stallId"), 10, 64)
	if err != nil {
		http.Error(w, "bad stall id", http.StatusBadRequest)
		return
	}
	menu, err := h.repo.ListMenu(r.Context(), stallID)
	if err != nil {
		h.fail(w, "list_menu_failed", err)
		return
	}
	h.ok(w, menu)
}

func (h *CatalogHandler) ok(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, action string, err error) {
	h.lg.Error(action, err, nil)
	http.Error(w, "storage error", http.StatusInternalServerError)
}
