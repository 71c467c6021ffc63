package players

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/routes"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type MetricRecorder interface {
	RecordMetric(ctx context.Context, playerID string, req models.RecordMetricRequest) (*models.PlayerMetric, error)
}

// Handler accepts player measurements from the profile editor.
type Handler struct {
	recorder MetricRecorder
}

func NewHandler(recorder MetricRecorder) *Handler {
	return &Handler{recorder: recorder}
}

// RegisterRoutes registers player routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/players/:player_id/metrics", h.RecordMetric)
}

// RecordMetric handles POST /players/:player_id/metrics
func (h *Handler) RecordMetric(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "players_handler.RecordMetric")
	defer span.End()

	playerID, err := routes.ParseUUID(c, "player_id")
	if err != nil {
		return err
	}

	var req models.RecordMetricRequest
	if err := routes.Bind(c, &req); err != nil {
		return err
	}

	metric, err := h.recorder.RecordMetric(ctx, playerID, req)
	if err != nil {
		return err
	}

	return routes.CreatedResponse(c, metric)
}
