package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jwlim/pitfolio/internal/trading"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// PanelHandler handles panel inspection endpoints
type PanelHandler struct {
	service *trading.Service
	logger  *logger.Logger
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(service *trading.Service, log *logger.Logger) *PanelHandler {
	return &PanelHandler{
		service: service,
		logger:  log,
	}
}

// ListTickers returns the tickers the panel covers
// GET /api/panel/tickers
func (h *PanelHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tickers, err := h.service.ListTickers(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tickers")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(tickers),
		"tickers": tickers,
	})
}

// GetDateRange returns the trading-day coverage for a ticker
// GET /api/panel/range?ticker=TSLA
func (h *PanelHandler) GetDateRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	result, err := h.service.AvailableDateRange(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get date range")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetFeatures returns one scored panel row
// GET /api/panel/features?ticker=TSLA&date=2024-06-03
func (h *PanelHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	result, err := h.service.GetFeatures(ctx, q.Get("ticker"), q.Get("date"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get features")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
