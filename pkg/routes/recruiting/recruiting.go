package recruiting

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/routes"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type Service interface {
	FindCandidates(ctx context.Context, coachID string, filters models.RecruitFilters) ([]models.MatchResult, error)
	TrendingPlayers(ctx context.Context) ([]models.TrendingResult, error)
	GetProgramNeeds(ctx context.Context, coachID string) (*models.ProgramNeeds, error)
	UpdateProgramNeeds(ctx context.Context, coachID string, req models.UpdateProgramNeedsRequest) (*models.ProgramNeeds, error)
}

// Handler serves the coach-facing recruiting endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers recruiting routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/candidates", h.Candidates)
	g.GET("/trending", h.Trending)
	g.GET("/program-needs", h.GetProgramNeeds)
	g.PUT("/program-needs", h.UpdateProgramNeeds)
}

// Candidates handles GET /candidates?grad_year=&position=&bats=&throws=
func (h *Handler) Candidates(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "recruiting_handler.Candidates")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}

	var filters models.RecruitFilters
	if err := routes.Bind(c, &filters); err != nil {
		return err
	}

	results, err := h.service.FindCandidates(ctx, coachID, filters)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, results)
}

// Trending handles GET /trending
func (h *Handler) Trending(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "recruiting_handler.Trending")
	defer span.End()

	results, err := h.service.TrendingPlayers(ctx)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, results)
}

func (h *Handler) GetProgramNeeds(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "recruiting_handler.GetProgramNeeds")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}

	needs, err := h.service.GetProgramNeeds(ctx, coachID)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, needs)
}

func (h *Handler) UpdateProgramNeeds(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "recruiting_handler.UpdateProgramNeeds")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProgramNeedsRequest
	if err := routes.Bind(c, &req); err != nil {
		return err
	}

	needs, err := h.service.UpdateProgramNeeds(ctx, coachID, req)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, needs)
}
