package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func protectedEndpoint(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	reached := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		claims, err := ClaimsFromContext(r.Context())
		require.NoError(t, err, "claims must be available downstream")
		assert.Equal(t, "organizer", claims["sub"])
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(handler), &reached
}

func TestAuthenticate(t *testing.T) {
	t.Run("a valid bearer token passes through", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)
		token := signedToken(t, testSecret, jwt.MapClaims{
			"sub": "organizer",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, *reached)
	})

	t.Run("a missing header is unauthorized", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *reached)
	})

	t.Run("a header without the bearer scheme is unauthorized", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)
		token := signedToken(t, testSecret, jwt.MapClaims{"sub": "organizer"})

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *reached)
	})

	t.Run("a token signed with another secret is unauthorized", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)
		token := signedToken(t, []byte("other-secret"), jwt.MapClaims{
			"sub": "organizer",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *reached)
	})

	t.Run("an expired token is unauthorized", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)
		token := signedToken(t, testSecret, jwt.MapClaims{
			"sub": "organizer",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *reached)
	})

	t.Run("garbage after the bearer prefix is unauthorized", func(t *testing.T) {
		handler, reached := protectedEndpoint(t)

		req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *reached)
	})
}
