package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedServer() *echo.Echo {
	e := echo.New()
	e.POST("/settlement", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, AuthMiddleware(testSecret), RequireProtocolIdentity("settlement-protocol"))
	return e
}

func doRequest(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/settlement", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProtocolCallbackRequiresProtocolIdentity(t *testing.T) {
	e := newProtectedServer()

	rec := doRequest(e, signToken(t, "settlement-protocol", "protocol"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtocolCallbackRejectsOtherCallers(t *testing.T) {
	e := newProtectedServer()

	// no token at all
	rec := doRequest(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// authenticated buyer, wrong role
	rec = doRequest(e, signToken(t, "alice", "buyer"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// right role claim, wrong subject
	rec = doRequest(e, signToken(t, "impostor", "protocol"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	e := newProtectedServer()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             "protocol",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "settlement-protocol"},
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec := doRequest(e, signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
