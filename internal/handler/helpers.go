// Package handler contains one screen group per file: auth, student, admin,
// registrar, and the browser-facing JSON endpoints for notifications and
// address selects.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

// currentSession returns the restored session or nil. Role gating already
// happened in the router; handlers only need the token and identity.
func currentSession(c *gin.Context) *models.Session {
	return render.Session(c)
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
