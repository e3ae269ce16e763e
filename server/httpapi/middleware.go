package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/arcdb/datamerge/pkg/api"
	"github.com/arcdb/datamerge/pkg/config"
)

type contextKey string

const ctxKeyClient contextKey = "api_client"

const headerAPIKey = "X-API-Key"

// GetClientFromContext returns the authenticated API client from the request
// context.
func GetClientFromContext(ctx context.Context) *config.APIClient {
	client, _ := ctx.Value(ctxKeyClient).(*config.APIClient)
	return client
}

// RecoveryMiddleware recovers from panics and returns a 500 error.
func RecoveryMiddleware(logger api.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered: %v", err)
					writeJSON(w, http.StatusInternalServerError, ErrorResponse{
						Error: "internal server error",
						Code:  http.StatusInternalServerError,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware adds CORS headers.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerAPIKey+", Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests.
func LoggingMiddleware(logger api.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			client := GetClientFromContext(r.Context())
			clientName := "-"
			if client != nil {
				clientName = client.Name
			}

			logger.Info("%s %s %s %d %s", clientName, r.Method, r.URL.Path, wrapped.statusCode, duration)
		})
	}
}

// AuthMiddleware validates the X-API-Key header against the configured
// clients. With no clients configured, the surface is open.
func AuthMiddleware(store *ClientStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store.Empty() {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(headerAPIKey)
			if apiKey == "" {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: "missing " + headerAPIKey + " header",
					Code:  http.StatusUnauthorized,
				})
				return
			}

			client, err := store.GetClient(apiKey)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: err.Error(),
					Code:  http.StatusUnauthorized,
				})
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyClient, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
