package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
	"github.com/dbtc-edu/enrollment-portal/pkg/render"
)

type referenceAPI interface {
	Strands(ctx context.Context, token string) ([]models.Strand, error)
	Provinces(ctx context.Context, token string) ([]string, error)
	Cities(ctx context.Context, token, province string) ([]string, error)
	Barangays(ctx context.Context, token, city string) ([]string, error)
}

// AddressHandler serves the cascading address pickers and strand options the
// application form fills its dropdowns from.
type AddressHandler struct {
	api referenceAPI
}

// NewAddressHandler constructs the handler.
func NewAddressHandler(api referenceAPI) *AddressHandler {
	return &AddressHandler{api: api}
}

// Strands lists the strand options.
func (h *AddressHandler) Strands(c *gin.Context) {
	sess := currentSession(c)

	strands, err := h.api.Strands(c.Request.Context(), sess.Token)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, strands)
}

// Provinces lists all provinces.
func (h *AddressHandler) Provinces(c *gin.Context) {
	sess := currentSession(c)

	provinces, err := h.api.Provinces(c.Request.Context(), sess.Token)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, provinces)
}

// Cities lists the cities of one province.
func (h *AddressHandler) Cities(c *gin.Context) {
	sess := currentSession(c)

	province := c.Param("province")
	if province == "" {
		render.JSONError(c, appErrors.Clone(appErrors.ErrValidation, "province is required"))
		return
	}

	cities, err := h.api.Cities(c.Request.Context(), sess.Token, province)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, cities)
}

// Barangays lists the barangays of one city.
func (h *AddressHandler) Barangays(c *gin.Context) {
	sess := currentSession(c)

	city := c.Param("city")
	if city == "" {
		render.JSONError(c, appErrors.Clone(appErrors.ErrValidation, "city is required"))
		return
	}

	barangays, err := h.api.Barangays(c.Request.Context(), sess.Token, city)
	if err != nil {
		render.JSONError(c, err)
		return
	}
	render.JSON(c, http.StatusOK, barangays)
}
