package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	jwtsvc "github.com/JUP-iter/vidaryproject/internal/pkg/jwt"
)

func setupRouter(j *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(j), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})
	return r
}

func TestAuthAcceptsValidToken(t *testing.T) {
	j := jwtsvc.New("secret", time.Hour)
	router := setupRouter(j)

	token, err := j.GenerateToken(7, "u@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"user_id":7`)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := setupRouter(jwtsvc.New("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	other := jwtsvc.New("different-secret", time.Hour)
	router := setupRouter(jwtsvc.New("secret", time.Hour))

	token, err := other.GenerateToken(7, "u@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	expired := jwtsvc.New("secret", -time.Minute)
	router := setupRouter(jwtsvc.New("secret", time.Hour))

	token, err := expired.GenerateToken(7, "u@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
