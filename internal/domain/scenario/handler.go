package scenario

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler provides the scenario evaluation REST endpoints.
type Handler struct {
	svc     *Service
	workers int
}

// NewHandler creates a new scenario handler. workers bounds batch
// parallelism.
func NewHandler(svc *Service, workers int) *Handler {
	return &Handler{svc: svc, workers: workers}
}

// RegisterRoutes registers scenario routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	sc := api.Group("/scenarios")
	sc.POST("/$evaluate", h.Evaluate)
	sc.POST("/$evaluate-batch", h.EvaluateBatch)
}

// Evaluate handles POST /api/v1/scenarios/$evaluate
func (h *Handler) Evaluate(c echo.Context) error {
	var s Scenario
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid scenario payload")
	}
	out := h.svc.Evaluate(s)
	if out.Error != "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, out.Error)
	}
	return c.JSON(http.StatusOK, out)
}

// EvaluateBatch handles POST /api/v1/scenarios/$evaluate-batch
func (h *Handler) EvaluateBatch(c echo.Context) error {
	var req struct {
		Scenarios []Scenario `json:"scenarios"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid batch payload")
	}
	if len(req.Scenarios) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "scenarios list is empty")
	}
	outs := h.svc.EvaluateBatch(c.Request().Context(), req.Scenarios, h.workers)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(outs),
		"outcomes": outs,
	})
}
