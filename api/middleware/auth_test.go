package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/tollnet/interop-backoffice/pkg/auth"
	"github.com/tollnet/interop-backoffice/pkg/config"
)

type staticSessions struct {
	live map[string]bool
}

func (s *staticSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return s.live[accessID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "tollnet-test", ExpirationMinutes: 120}
}

func mintToken(t *testing.T, jti string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		OperatorID: "NAO",
		Username:   "nao-console",
		JTI:        jti,
	})
	require.NoError(t, err)
	return token
}

func authedHandler(t *testing.T, sessions *staticSessions) (http.Handler, *string) {
	t.Helper()
	var seenOperator string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenOperator = OperatorIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testJWTConfig(), sessions, nil)(inner), &seenOperator
}

func TestAuthResolvesOperator(t *testing.T) {
	sessions := &staticSessions{live: map[string]bool{"jti-1": true}}
	handler, seen := authedHandler(t, sessions)

	req := httptest.NewRequest("GET", "/api/notSettled", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "jti-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NAO", *seen)
}

func TestAuthAcceptsLegacyHeader(t *testing.T) {
	sessions := &staticSessions{live: map[string]bool{"jti-2": true}}
	handler, seen := authedHandler(t, sessions)

	req := httptest.NewRequest("GET", "/api/notSettled", nil)
	req.Header.Set(legacyAuthHeader, mintToken(t, "jti-2"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NAO", *seen)
}

func TestAuthRejectsMissingAndRevoked(t *testing.T) {
	sessions := &staticSessions{live: map[string]bool{}}
	handler, _ := authedHandler(t, sessions)

	req := httptest.NewRequest("GET", "/api/notSettled", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token, revoked session.
	req = httptest.NewRequest("GET", "/api/notSettled", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "jti-3"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(nil)(inner)

	req := httptest.NewRequest("POST", "/api/admin/resetpasses", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithAdmin(context.Background(), false)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithAdmin(context.Background(), true)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
