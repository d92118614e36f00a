package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"itinerary/internal/http/middleware"
	"itinerary/internal/logger"
	"itinerary/internal/modules/history"
	"itinerary/internal/modules/itinerary"
)

type HistoryReader interface {
	Get(ctx context.Context, id string) (itinerary.Itinerary, error)
	ListByClient(ctx context.Context, clientID string, limit int) ([]history.Summary, error)
}

// HistoryHandler serves stored itineraries. A nil reader means history is disabled.
type HistoryHandler struct {
	store HistoryReader
	log   *logger.Logger
}

func NewHistoryHandler(store HistoryReader, log *logger.Logger) *HistoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HistoryHandler{store: store, log: log}
}

// Get handles GET /api/itineraries/:id.
func (h *HistoryHandler) Get(c *gin.Context) {
	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, "History disabled", "unavailable", "itinerary history is not configured")
		return
	}
	it, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeFailure(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, it)
}

// List handles GET /api/itineraries for the calling client.
func (h *HistoryHandler) List(c *gin.Context) {
	if h.store == nil {
		writeError(c, http.StatusServiceUnavailable, "History disabled", "unavailable", "itinerary history is not configured")
		return
	}
	clientID := middleware.CallerClientID(c)
	if clientID == "" {
		writeError(c, http.StatusBadRequest, "Invalid request", string(itinerary.KindValidation), "X-Client-ID header is required")
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(c, http.StatusBadRequest, "Invalid request", string(itinerary.KindValidation), "limit must be a positive integer")
			return
		}
		limit = n
	}
	items, err := h.store.ListByClient(c.Request.Context(), clientID, limit)
	if err != nil {
		writeFailure(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": items})
}
