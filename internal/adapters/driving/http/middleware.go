package http

import (
	"net/http"
	"strconv"
	"time"
)

// withMiddleware wraps the router with recovery, logging and metrics.
// Recovery sits outermost so panics in the other layers are caught too.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return s.recover(s.observe(next))
}

// observe logs every request and records request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", elapsed,
		)
		if s.metrics != nil {
			// Use the mux pattern as the route label so path parameters
			// don't blow up metric cardinality.
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}
			s.metrics.ObserveRequest(route, r.Method, strconv.Itoa(rw.statusCode), elapsed)
		}
	})
}

// recover turns handler panics into 500 responses instead of killing the
// connection.
func (s *Server) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
