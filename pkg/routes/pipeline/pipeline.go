package pipeline

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/routes"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type Reconciler interface {
	AddToPipeline(ctx context.Context, coachID, playerID string, status models.PipelineStatus) (*models.PipelineEntry, error)
	UpdateStatus(ctx context.Context, coachID, entryID string, status models.PipelineStatus) error
	AppendNote(ctx context.Context, coachID, playerID, text string) (*models.PipelineEntry, error)
	Remove(ctx context.Context, coachID, playerID string) error
	ReadPipeline(ctx context.Context, coachID string) ([]models.PipelineEntry, error)
	IsOnPipeline(ctx context.Context, coachID, playerID string) (bool, error)
}

// Handler serves a coach's recruiting pipeline.
type Handler struct {
	reconciler Reconciler
}

func NewHandler(reconciler Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// MembershipResponse reports whether a player is on the coach's pipeline.
type MembershipResponse struct {
	PlayerID   string `json:"player_id"`
	OnPipeline bool   `json:"on_pipeline"`
}

// RegisterRoutes registers pipeline routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	p := g.Group("/pipeline")
	p.GET("", h.List)
	p.POST("", h.Add)
	p.PUT("/entries/:id/status", h.UpdateStatus)
	p.GET("/players/:player_id", h.Membership)
	p.POST("/players/:player_id/notes", h.AppendNote)
	p.DELETE("/players/:player_id", h.Remove)
}

// List handles GET /pipeline
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.List")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}

	entries, err := h.reconciler.ReadPipeline(ctx, coachID)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, entries)
}

// Add handles POST /pipeline
func (h *Handler) Add(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.Add")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}

	var req models.AddToPipelineRequest
	if err := routes.Bind(c, &req); err != nil {
		return err
	}
	playerID, err := routes.ParseUUIDValue("player_id", req.PlayerID)
	if err != nil {
		return err
	}

	entry, err := h.reconciler.AddToPipeline(ctx, coachID, playerID, req.Status)
	if err != nil {
		return err
	}

	return routes.CreatedResponse(c, entry)
}

// UpdateStatus handles PUT /pipeline/entries/:id/status
func (h *Handler) UpdateStatus(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.UpdateStatus")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}
	entryID, err := routes.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePipelineStatusRequest
	if err := routes.Bind(c, &req); err != nil {
		return err
	}

	if err := h.reconciler.UpdateStatus(ctx, coachID, entryID, req.Status); err != nil {
		return err
	}

	return routes.NoContentResponse(c)
}

// AppendNote handles POST /pipeline/players/:player_id/notes
func (h *Handler) AppendNote(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.AppendNote")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}
	playerID, err := routes.ParseUUID(c, "player_id")
	if err != nil {
		return err
	}

	var req models.AppendNoteRequest
	if err := routes.Bind(c, &req); err != nil {
		return err
	}

	entry, err := h.reconciler.AppendNote(ctx, coachID, playerID, req.Note)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, entry)
}

// Remove handles DELETE /pipeline/players/:player_id
func (h *Handler) Remove(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.Remove")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}
	playerID, err := routes.ParseUUID(c, "player_id")
	if err != nil {
		return err
	}

	if err := h.reconciler.Remove(ctx, coachID, playerID); err != nil {
		return err
	}

	return routes.NoContentResponse(c)
}

// Membership handles GET /pipeline/players/:player_id
func (h *Handler) Membership(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "pipeline_handler.Membership")
	defer span.End()

	coachID, err := routes.GetCoachID(c)
	if err != nil {
		return err
	}
	playerID, err := routes.ParseUUID(c, "player_id")
	if err != nil {
		return err
	}

	onPipeline, err := h.reconciler.IsOnPipeline(ctx, coachID, playerID)
	if err != nil {
		return err
	}

	return routes.SuccessResponse(c, MembershipResponse{PlayerID: playerID, OnPipeline: onPipeline})
}
