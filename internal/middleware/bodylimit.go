package middleware

import "net/http"

// DefaultMaxBodySize caps webhook payloads. Meta's delivery envelopes are
// a few kilobytes, so 1MB leaves generous headroom.
const DefaultMaxBodySize int64 = 1 << 20

// BodyLimitMiddleware rejects oversized request bodies before any handler
// or signature check reads them.
type BodyLimitMiddleware struct {
	maxSize int64
}

func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > m.maxSize {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}

		// Guards against bodies that lie about their Content-Length.
		r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		next.ServeHTTP(w, r)
	})
}
