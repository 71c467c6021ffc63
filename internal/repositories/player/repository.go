package player

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

const playersTable = "players"

var playerStruct = database.NewStruct(new(models.Player))

// Repository handles player profile reads
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new player repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// BuildListQuery renders the SELECT for a player query.
func BuildListQuery(q models.PlayerQuery) (string, []any) {
	sb := playerStruct.SelectFrom(playersTable)

	var where []string
	if q.OnboardedOnly {
		where = append(where, sb.Equal("onboarding_completed", true))
	}
	if q.HasGradYear {
		where = append(where, sb.IsNotNull("grad_year"))
	}
	if len(q.GradYears) > 0 {
		where = append(where, sb.In("grad_year", sqlbuilder.Flatten(q.GradYears)...))
	}
	if len(q.Positions) > 0 {
		positions := sqlbuilder.Flatten(q.Positions)
		where = append(where, sb.Or(
			sb.In("primary_position", positions...),
			sb.In("secondary_position", positions...),
		))
	}
	if len(q.States) > 0 {
		where = append(where, sb.In("high_school_state", sqlbuilder.Flatten(q.States)...))
	}
	if q.Bats != "" {
		where = append(where, sb.Equal("bats", q.Bats))
	}
	if q.Throws != "" {
		where = append(where, sb.Equal("throws", q.Throws))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}

	sb.OrderBy("id")
	if q.Limit > 0 {
		sb.Limit(q.Limit)
	}

	return sb.Build()
}

// List returns players matching the query, capped at q.Limit.
func (r *Repository) List(ctx context.Context, q models.PlayerQuery) ([]models.Player, error) {
	ctx, span := tracing.StartSpan(ctx, "player.Repository.List")
	defer span.End()

	query, args := BuildListQuery(q)
	var players []models.Player
	if err := r.db.SelectContext(ctx, &players, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"grad_years": q.GradYears,
			"positions":  q.Positions,
			"states":     q.States,
		}).Error("Failed to list players")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list players")
	}

	return players, nil
}

// GetByIDs fetches players in one query. Missing ids are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]models.Player, error) {
	ctx, span := tracing.StartSpan(ctx, "player.Repository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return []models.Player{}, nil
	}

	sb := playerStruct.SelectFrom(playersTable)
	sb.Where(sb.In("id", sqlbuilder.Flatten(ids)...))

	query, args := sb.Build()
	var players []models.Player
	if err := r.db.SelectContext(ctx, &players, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("count", len(ids)).Error("Failed to get players by id")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get players")
	}

	return players, nil
}

// CountByStateAndYear groups onboarded players by high school state and grad
// year. Players without a state are not counted.
func (r *Repository) CountByStateAndYear(ctx context.Context) ([]models.StateGradYearCount, error) {
	ctx, span := tracing.StartSpan(ctx, "player.Repository.CountByStateAndYear")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("high_school_state", "grad_year", sb.As("COUNT(*)", "count"))
	sb.From(playersTable)
	sb.Where(
		sb.Equal("onboarding_completed", true),
		sb.IsNotNull("high_school_state"),
	)
	sb.GroupBy("high_school_state", "grad_year")
	sb.OrderBy("high_school_state", "grad_year")

	query, args := sb.Build()
	var rows []models.StateGradYearCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count players by state")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count players by state")
	}

	return rows, nil
}
