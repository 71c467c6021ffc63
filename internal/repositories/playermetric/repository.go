package playermetric

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const metricsTable = "player_metrics"

var metricStruct = database.NewStruct(new(models.PlayerMetric))

// Repository handles player metric persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new player metric repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListByPlayerIDs returns every metric row for the players, oldest first per
// player, in a single query.
func (r *Repository) ListByPlayerIDs(ctx context.Context, playerIDs []string) ([]models.PlayerMetric, error) {
	ctx, span := tracing.StartSpan(ctx, "playermetric.Repository.ListByPlayerIDs")
	defer span.End()

	if len(playerIDs) == 0 {
		return []models.PlayerMetric{}, nil
	}

	sb := metricStruct.SelectFrom(metricsTable)
	sb.Where(sb.In("player_id", sqlbuilder.Flatten(playerIDs)...))
	sb.OrderBy("player_id", "created_at", "id")

	query, args := sb.Build()
	var rows []models.PlayerMetric
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("player_count", len(playerIDs)).Error("Failed to list player metrics")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list player metrics")
	}

	return rows, nil
}

// Create inserts a metric row, filling in the id and timestamp when unset.
func (r *Repository) Create(ctx context.Context, metric *models.PlayerMetric) error {
	ctx, span := tracing.StartSpan(ctx, "playermetric.Repository.Create")
	defer span.End()

	if metric.ID == "" {
		metric.ID = uuid.NewString()
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now().UTC()
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(metricsTable).
		Cols("id", "player_id", "metric_label", "metric_value", "metric_kind", "verified_date", "created_at").
		Values(metric.ID, metric.PlayerID, metric.Label, metric.Value, metric.Kind, metric.VerifiedDate, metric.CreatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"player_id": metric.PlayerID,
			"label":     metric.Label,
		}).Error("Failed to create player metric")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create player metric")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"player_id": metric.PlayerID,
		"metric_id": metric.ID,
	}).Debugf("Created %s", metricsTable)
	return nil
}
