package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

func roleGateEngine(sess *models.Session, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if sess != nil {
			c.Set(render.CtxSession, sess)
		}
	})
	r.GET("/protected", requireRoles(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequireRolesRedirectsAnonymous(t *testing.T) {
	r := roleGateEngine(nil, models.RoleStudent)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireRolesRedirectsWrongRole(t *testing.T) {
	sess := &models.Session{ID: "s1", Role: models.RoleStudent}
	r := roleGateEngine(sess, models.RoleAdmin, models.RoleRegistrar)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	sess := &models.Session{ID: "s1", Role: models.RoleRegistrar}
	r := roleGateEngine(sess, models.RoleAdmin, models.RoleRegistrar)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
