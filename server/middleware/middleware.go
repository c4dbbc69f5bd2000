package middleware

import (
	"net/http"

	"github.com/kbukum/fanin/logger"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware so the first in the list is the outermost: it
// sees the request first and the response last. Nil entries are skipped.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			final = middlewares[i](final)
		}
		return final
	}
}

// Standard is the request-scoped stack the aggregate server runs, outermost
// first:
//
//   - Recovery wraps everything else, so a panic in any later layer or in an
//     aggregate handler still yields a 500 body instead of a dropped connection.
//   - RequestID comes next. The ID is on the request before CORS, the logger
//     and the handler run, and it is already on the response headers when
//     Recovery writes a 500.
//   - CORS answers preflight requests itself, so they skip the body limit and
//     the request log.
//   - BodySizeLimit caps the body before any handler reads it.
//   - RequestLogger is innermost and records the status and byte count the
//     handler actually wrote, together with the request ID.
//
// A nil cors disables CORS handling.
func Standard(log *logger.Logger, cors *CORSConfig, maxBodySize string) Middleware {
	var corsMW Middleware
	if cors != nil {
		corsMW = CORS(cors)
	}
	return Chain(
		Recovery(log),
		RequestID(),
		corsMW,
		BodySizeLimit(maxBodySize),
		RequestLogger(log),
	)
}
