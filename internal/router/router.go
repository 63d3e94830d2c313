package router

import (
	"net/http"

	"SieveAPI/internal/config"
	"SieveAPI/internal/handler"
	"SieveAPI/internal/logger"

	"github.com/google/uuid"
)

// InitRoutes registers the API routes on the default mux.
func InitRoutes(cfg *config.Config) {
	registerRoutes(http.DefaultServeMux, cfg)
}

// Patterns carry no method so OPTIONS preflights reach withCORS; the
// handlers reject everything but GET themselves.
func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(h))
	}
	mux.HandleFunc("/api/{resource}", cors(handler.ListHandler))
	mux.HandleFunc("/api/{resource}/count", cors(handler.CountHandler))
	mux.HandleFunc("/api/{resource}/docs", cors(handler.DocsHandler))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		level := "info"
		if sw.status >= 500 {
			level = "error"
		} else if sw.status >= 400 {
			level = "warn"
		}
		fields := map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"query":      r.URL.RawQuery,
			"status":     sw.status,
		}
		switch level {
		case "error":
			logger.Error("response", fields)
		case "warn":
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
