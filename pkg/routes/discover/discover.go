package discover

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/routes"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type Service interface {
	RecruitsByState(ctx context.Context, state string, filters models.RecruitFilters) ([]models.StatePlayerSummary, error)
	StateRecruitCounts(ctx context.Context) (map[string]models.StateRecruitCount, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers discovery routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	d := g.Group("/discover")
	d.GET("/states", h.Counts)
	d.GET("/states/:state", h.ByState)
}

// Counts handles GET /discover/states
func (h *Handler) Counts(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "discover_handler.Counts")
	defer span.End()

	counts, err := h.service.StateRecruitCounts(ctx)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, counts)
}

// ByState handles GET /discover/states/:state?grad_year=&position=&bats=&throws=
func (h *Handler) ByState(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "discover_handler.ByState")
	defer span.End()

	var filters models.RecruitFilters
	if err := routes.Bind(c, &filters); err != nil {
		return err
	}

	players, err := h.service.RecruitsByState(ctx, c.Param("state"), filters)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, players)
}
