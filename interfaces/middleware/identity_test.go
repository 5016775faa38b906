package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityFor(t *testing.T, authorization string) string {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity())
	var captured string
	router.GET("/probe", func(ctx *gin.Context) {
		captured = CallerID(ctx)
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return captured
}

func TestIdentity_AnonymousFallsBackToClientIP(t *testing.T) {
	assert.Equal(t, "203.0.113.7", identityFor(t, ""))
}

func TestIdentity_ValidTokenContributesSubject(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: "user-42"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.Equal(t, "user-42", identityFor(t, "Bearer "+signed))
}

func TestIdentity_BadTokenFallsBackToClientIP(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	assert.Equal(t, "203.0.113.7", identityFor(t, "Bearer not-a-token"))
}

func TestIdentity_WrongSecretFallsBackToClientIP(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: "user-42"})
	signed, err := token.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.7", identityFor(t, "Bearer "+signed))
}
