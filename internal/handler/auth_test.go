package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newProtectedRouter(token string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", RequireAdmin(token), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func adminRequest(r *gin.Engine, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAdmin(t *testing.T) {
	r := newProtectedRouter("secret")

	assert.Equal(t, http.StatusUnauthorized, adminRequest(r, "", ""))
	assert.Equal(t, http.StatusForbidden, adminRequest(r, "Authorization", "Bearer wrong"))
	assert.Equal(t, http.StatusOK, adminRequest(r, "Authorization", "Bearer secret"))
	assert.Equal(t, http.StatusOK, adminRequest(r, "Authorization", "bearer secret"))
	assert.Equal(t, http.StatusOK, adminRequest(r, "X-Admin-Token", "secret"))
	assert.Equal(t, http.StatusForbidden, adminRequest(r, "X-Admin-Token", "wrong"))
	// токен в заголовке без схемы не принимается
	assert.Equal(t, http.StatusUnauthorized, adminRequest(r, "Authorization", "secret"))
}

func TestRequireAdminDevModePassesThrough(t *testing.T) {
	r := newProtectedRouter("")
	assert.Equal(t, http.StatusOK, adminRequest(r, "", ""))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Bearer a b"))
}
