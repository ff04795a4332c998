package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, token string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()

	var seen *models.User
	handler := NewJWTMiddleware(testSecret).Authenticate(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticateAdminToken(t *testing.T) {
	token := signToken(t, testSecret, Claims{
		Sub:   "user-1",
		Email: "admin@example.com",
		Role:  models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	rec, user := doRequest(t, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, 3, user.AccessRank)
	assert.True(t, user.IsAdmin())
}

func TestAuthenticateUnknownRoleGetsPartnerRank(t *testing.T) {
	token := signToken(t, testSecret, Claims{Sub: "user-2", Role: "contractor"})

	rec, user := doRequest(t, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.AccessRank)
	assert.False(t, user.IsAdmin())
}

func TestAuthenticateMissingToken(t *testing.T) {
	rec, user := doRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", Claims{Sub: "user-3", Role: models.RoleAdmin})

	rec, user := doRequest(t, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, Claims{
		Sub:  "user-4",
		Role: models.RoleInternal,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	rec, user := doRequest(t, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRankFromContextDeniesByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, 0, RankFromContext(req.Context()))
}
