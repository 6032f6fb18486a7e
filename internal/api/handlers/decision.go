package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jwlim/pitfolio/internal/trading"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// DecisionHandler handles decision, threshold, and backtest endpoints
type DecisionHandler struct {
	service *trading.Service
	logger  *logger.Logger
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(service *trading.Service, log *logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		service: service,
		logger:  log,
	}
}

// thresholdParamsFromQuery reads the threshold selection parameters shared
// by the GET endpoints
func thresholdParamsFromQuery(r *http.Request) trading.ThresholdParams {
	q := r.URL.Query()
	p := trading.ThresholdParams{
		Method: q.Get("method"),
		Buy:    queryFloat(q.Get("buy")),
		Sell:   queryFloat(q.Get("sell")),
		QBuy:   queryFloat(q.Get("q_buy")),
		QSell:  queryFloat(q.Get("q_sell")),
	}
	if v := q.Get("start"); v != "" {
		p.StartDate = &v
	}
	if v := q.Get("end"); v != "" {
		p.EndDate = &v
	}
	return p
}

func queryFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Decide returns the action for one (ticker, date)
// GET /api/decide?ticker=TSLA&date=2024-06-03&method=percentile
func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	result, err := h.service.Decide(ctx, trading.DecideParams{
		Ticker:     q.Get("ticker"),
		Date:       q.Get("date"),
		Thresholds: thresholdParamsFromQuery(r),
	})
	if err != nil {
		h.logger.WithError(err).Error("Decide failed")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// BatchDecideRequest represents a batch decision request
type BatchDecideRequest struct {
	Pairs []struct {
		Ticker string `json:"ticker"`
		Date   string `json:"date"`
	} `json:"pairs"`
	Thresholds ThresholdRequest `json:"thresholds"`
}

// ThresholdRequest carries threshold selection in JSON bodies
type ThresholdRequest struct {
	Method    string   `json:"method"`
	Buy       *float64 `json:"buy"`
	Sell      *float64 `json:"sell"`
	QBuy      *float64 `json:"q_buy"`
	QSell     *float64 `json:"q_sell"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
}

func (t ThresholdRequest) toParams() trading.ThresholdParams {
	return trading.ThresholdParams{
		Method:    t.Method,
		Buy:       t.Buy,
		Sell:      t.Sell,
		QBuy:      t.QBuy,
		QSell:     t.QSell,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
	}
}

// DecideBatch returns actions for many (ticker, date) pairs
// POST /api/decide/batch
func (h *DecisionHandler) DecideBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchDecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Pairs) == 0 {
		respondError(w, http.StatusBadRequest, "pairs is required")
		return
	}

	params := make([]trading.DecideParams, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		params = append(params, trading.DecideParams{
			Ticker:     p.Ticker,
			Date:       p.Date,
			Thresholds: req.Thresholds.toParams(),
		})
	}

	results, err := h.service.DecideBatch(ctx, params)
	if err != nil {
		h.logger.WithError(err).Error("Batch decide failed")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// ResolveThresholds returns the resolved cut points for a ticker
// GET /api/thresholds?ticker=TSLA&method=percentile
func (h *DecisionHandler) ResolveThresholds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	th, method, err := h.service.ResolveThresholds(ctx, ticker, thresholdParamsFromQuery(r))
	if err != nil {
		h.logger.WithError(err).Error("Threshold resolution failed")
		respondError(w, http.StatusInternalServerError, "Threshold resolution failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":     ticker,
		"method":     method,
		"thresholds": th,
	})
}

// BacktestRequest represents a replication-backtest request
type BacktestRequest struct {
	Ticker     string           `json:"ticker"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	Thresholds ThresholdRequest `json:"thresholds"`
}

// RunBacktest replays decisions over a window
// POST /api/backtest
func (h *DecisionHandler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	result, err := h.service.RunBacktest(ctx, trading.BacktestParams{
		Ticker:     req.Ticker,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Thresholds: req.Thresholds.toParams(),
	})
	if err != nil {
		h.logger.WithError(err).Error("Backtest failed")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SimulateRequest represents a live-simulator request
type SimulateRequest struct {
	Ticker      string           `json:"ticker"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	InitialCash float64          `json:"initial_cash"`
	Sizing      string           `json:"sizing"`
	CostBps     *float64         `json:"transaction_cost_bps"`
	Thresholds  ThresholdRequest `json:"thresholds"`
}

// Simulate runs the cash/shares simulator over a window
// POST /api/simulate
func (h *DecisionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	result, err := h.service.Simulate(ctx, trading.SimulateParams{
		Ticker:      req.Ticker,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		InitialCash: req.InitialCash,
		Sizing:      req.Sizing,
		CostBps:     req.CostBps,
		Thresholds:  req.Thresholds.toParams(),
	})
	if err != nil {
		h.logger.WithError(err).Error("Simulation failed")
		respondError(w, http.StatusInternalServerError, "Panel unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
