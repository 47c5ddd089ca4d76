package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiofit/gym-assistant-go/internal/util"
)

func signedRequest(t *testing.T, secret, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256="+util.HmacSHA256([]byte(secret), []byte(body)))
	return req
}

func TestMetaSignatureMiddleware(t *testing.T) {
	const secret = "app-secret"
	const body = `{"object":"whatsapp_business_account"}`

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(got)
	})

	t.Run("valid signature passes with body intact", func(t *testing.T) {
		m := NewMetaSignatureMiddleware(secret)
		rec := httptest.NewRecorder()

		m.Handler(echo).ServeHTTP(rec, signedRequest(t, secret, body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, body, rec.Body.String())
	})

	t.Run("wrong signature is rejected", func(t *testing.T) {
		m := NewMetaSignatureMiddleware(secret)
		rec := httptest.NewRecorder()

		m.Handler(echo).ServeHTTP(rec, signedRequest(t, "other-secret", body))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing signature header is rejected", func(t *testing.T) {
		m := NewMetaSignatureMiddleware(secret)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))

		m.Handler(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed signature prefix is rejected", func(t *testing.T) {
		m := NewMetaSignatureMiddleware(secret)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		req.Header.Set("X-Hub-Signature-256", "md5=abc")

		m.Handler(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty secret bypasses verification", func(t *testing.T) {
		m := NewMetaSignatureMiddleware("")
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))

		m.Handler(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
