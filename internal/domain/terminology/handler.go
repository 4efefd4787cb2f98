package terminology

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler provides REST endpoints for terminology lookups.
type Handler struct {
	svc     *Service
	catalog *Catalog
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service, catalog *Catalog) *Handler {
	return &Handler{svc: svc, catalog: catalog}
}

// RegisterRoutes registers terminology routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	term := api.Group("/terminology")
	term.GET("/organisms/:code", h.GetOrganism)
	term.GET("/drugs/:code", h.GetDrug)
	term.GET("/valuesets/:id/contains", h.ValueSetContains)
}

// GetOrganism handles GET /api/v1/terminology/organisms/:code
func (h *Handler) GetOrganism(c echo.Context) error {
	ref, err := h.svc.LookupOrganism(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "organism code not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ref)
}

// GetDrug handles GET /api/v1/terminology/drugs/:code
func (h *Handler) GetDrug(c echo.Context) error {
	ref, err := h.svc.LookupDrug(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "drug code not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ref)
}

// ValueSetContains handles GET /api/v1/terminology/valuesets/:id/contains?code=...
func (h *Handler) ValueSetContains(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'code' is required")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"set_id":   c.Param("id"),
		"code":     code,
		"contains": h.catalog.InValueSet(code, c.Param("id")),
	})
}
