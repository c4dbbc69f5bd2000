package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/fanin/logger"
)

// RequestLogger logs every request except probes and metrics scrapes.
// Requests slower than slowRequest are flagged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := logger.MergeWithDuration(map[string]interface{}{
				"method":           r.Method,
				"path":             r.URL.Path,
				logger.FieldStatus: rec.status,
				"bytes":            rec.bytes,
			}, duration)
			if q := r.URL.RawQuery; q != "" {
				fields["query"] = q
			}
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields["request_id"] = id
			}
			if duration > slowRequest {
				fields["slow"] = true
			}

			logByStatus(log, fields, rec.status)
		})
	}
}

const slowRequest = 5 * time.Second

var probePaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/metrics": true,
}

func isProbeEndpoint(path string) bool {
	return probePaths[path]
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
