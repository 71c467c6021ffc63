package coach

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const coachesTable = "coaches"

var coachStruct = database.NewStruct(new(models.Coach))

// Repository handles coach profile reads and the legacy recruiting needs field
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new coach repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a coach by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Coach, error) {
	ctx, span := tracing.StartSpan(ctx, "coach.Repository.Get")
	defer span.End()

	sb := coachStruct.SelectFrom(coachesTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var coach models.Coach
	err := r.db.GetContext(ctx, &coach, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "coach %s does not exist", id)
	}
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", id).Error("Failed to get coach")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get coach")
	}

	return &coach, nil
}

// UpdateRecruitingNeeds overwrites the legacy recruiting_needs position list.
func (r *Repository) UpdateRecruitingNeeds(ctx context.Context, id string, positions []string) error {
	ctx, span := tracing.StartSpan(ctx, "coach.Repository.UpdateRecruitingNeeds")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(coachesTable).
		Set(ub.Assign("recruiting_needs", pq.StringArray(positions))).
		Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", id).Error("Failed to update recruiting needs")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update recruiting needs")
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "coach %s does not exist", id)
	}

	return nil
}
