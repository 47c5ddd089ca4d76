package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/util"
)

// MetaSignatureMiddleware verifies the X-Hub-Signature-256 header Meta
// attaches to webhook deliveries: "sha256=" followed by the hex HMAC of
// the raw body under the app secret.
type MetaSignatureMiddleware struct {
	secret string
}

func NewMetaSignatureMiddleware(secret string) *MetaSignatureMiddleware {
	return &MetaSignatureMiddleware{secret: secret}
}

func (m *MetaSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("webhook signature verification bypassed: META_APP_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		signature := r.Header.Get("X-Hub-Signature-256")
		if !strings.HasPrefix(signature, "sha256=") {
			log.Warn().Msg("webhook signature middleware: missing or malformed signature header")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing signature",
			})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("webhook signature middleware: failed to read body")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to read request body",
			})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		computed := util.HmacSHA256([]byte(m.secret), body)
		if !util.ConstantTimeEqual(computed, strings.TrimPrefix(signature, "sha256=")) {
			log.Warn().Msg("webhook signature middleware: invalid signature")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid signature",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
