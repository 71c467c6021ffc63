package engagement

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const engagementTable = "player_engagement"

var engagementStruct = database.NewStruct(new(models.Engagement))

// Repository reads the player engagement rollup
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new engagement repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListMostViewed returns the rows with the most views in the last week.
func (r *Repository) ListMostViewed(ctx context.Context, limit int) ([]models.Engagement, error) {
	ctx, span := tracing.StartSpan(ctx, "engagement.Repository.ListMostViewed")
	defer span.End()

	sb := engagementStruct.SelectFrom(engagementTable)
	sb.OrderBy("recent_views_7d").Desc()
	sb.Limit(limit)

	query, args := sb.Build()
	var rows []models.Engagement
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("limit", limit).Error("Failed to list engagement")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list engagement")
	}

	return rows, nil
}

// ListByPlayerIDs returns engagement rows for the players. Players without a
// rollup row are absent from the result.
func (r *Repository) ListByPlayerIDs(ctx context.Context, playerIDs []string) ([]models.Engagement, error) {
	ctx, span := tracing.StartSpan(ctx, "engagement.Repository.ListByPlayerIDs")
	defer span.End()

	if len(playerIDs) == 0 {
		return []models.Engagement{}, nil
	}

	sb := engagementStruct.SelectFrom(engagementTable)
	sb.Where(sb.In("player_id", sqlbuilder.Flatten(playerIDs)...))

	query, args := sb.Build()
	var rows []models.Engagement
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("player_count", len(playerIDs)).Error("Failed to list engagement by player")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list engagement")
	}

	return rows, nil
}
