package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/jwlim/pitfolio/internal/api/handlers"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(decisionHandler *handlers.DecisionHandler, panelHandler *handlers.PanelHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Decision endpoints
	api.HandleFunc("/decide", decisionHandler.Decide).Methods("GET")
	api.HandleFunc("/decide/batch", decisionHandler.DecideBatch).Methods("POST")
	api.HandleFunc("/thresholds", decisionHandler.ResolveThresholds).Methods("GET")
	api.HandleFunc("/backtest", decisionHandler.RunBacktest).Methods("POST")
	api.HandleFunc("/simulate", decisionHandler.Simulate).Methods("POST")

	// Panel endpoints
	api.HandleFunc("/panel/tickers", panelHandler.ListTickers).Methods("GET")
	api.HandleFunc("/panel/range", panelHandler.GetDateRange).Methods("GET")
	api.HandleFunc("/panel/features", panelHandler.GetFeatures).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(50), 100)))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "pitfolio-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware sheds load when the request rate exceeds the limit
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
