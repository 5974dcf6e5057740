package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/repository"
)

const (
	defaultDeliveryLimit = 50
	maxDeliveryLimit     = 500
)

// DeliveryHandler serves the recent delivery log.
type DeliveryHandler struct {
	deliveries repository.DeliveryRepository
	logger     *slog.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(deliveries repository.DeliveryRepository, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveries: deliveries,
		logger:     logger,
	}
}

// DeliveryListResponse is the JSON response for GET /api/v1/deliveries.
type DeliveryListResponse struct {
	Deliveries []*domain.Delivery `json:"deliveries"`
	Count      int                `json:"count"`
}

// List handles GET /api/v1/deliveries?limit=N - newest first.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultDeliveryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxDeliveryLimit)
	}

	list, err := h.deliveries.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list deliveries", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list deliveries"})
		return
	}

	writeJSON(w, http.StatusOK, DeliveryListResponse{
		Deliveries: list,
		Count:      len(list),
	})
}
