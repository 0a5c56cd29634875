package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/copyleftdev/torus/internal/logging"
)

// RecoveryMiddleware turns a handler panic into a 500 JSON response with
// kind "other" and logs the panic with its stack.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := Errorf("panic: %v", rec).WithComponent("http").WithOperation(r.Method + " " + r.URL.Path)
				logger.Error("Recovered from panic", map[string]interface{}{
					"error":      err.Error(),
					"stack":      string(debug.Stack()),
					"request_id": middleware.GetReqID(r.Context()),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error": http.StatusText(http.StatusInternalServerError),
					"kind":  Other.String(),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorHandler logs every response with a client error status. Server
// errors are left to RecoveryMiddleware and the request logger.
func ErrorHandler(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if status := ww.Status(); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
				logger.Warn("Request rejected", map[string]interface{}{
					"status":     status,
					"request":    fmt.Sprintf("%s %s", r.Method, r.URL.Path),
					"request_id": middleware.GetReqID(r.Context()),
				})
			}
		})
	}
}
