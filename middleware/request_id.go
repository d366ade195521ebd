package middleware

import (
	"log"
	"net/http"
	"time"

	"alphatron/appctx"
	"alphatron/core"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, echoed in the
// X-Request-ID response header, and logs its duration. A well-formed id
// sent by the caller is kept, anything else is replaced.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !core.IsValidID(requestID) {
			requestID = core.NewID("req")
		}
		w.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(appctx.SetRequestID(r.Context(), requestID)))
		log.Printf("📋 [%s] %s %s completed in %s", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}
