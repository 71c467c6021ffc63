package programneeds

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const programNeedsTable = "program_needs"

var needsStruct = database.NewStruct(new(models.ProgramNeeds))

var upsertColumns = []string{
	"grad_years",
	"positions",
	"preferred_regions",
	"min_height_inches",
	"max_height_inches",
	"min_pitch_velo",
	"min_exit_velo",
	"max_sixty_time",
	"updated_at",
}

// Repository handles program needs persistence. Each coach has at most one row.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new program needs repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get returns the coach's program needs, or nil when the coach has none.
func (r *Repository) Get(ctx context.Context, coachID string) (*models.ProgramNeeds, error) {
	ctx, span := tracing.StartSpan(ctx, "programneeds.Repository.Get")
	defer span.End()

	sb := needsStruct.SelectFrom(programNeedsTable)
	sb.Where(sb.Equal("coach_id", coachID))

	query, args := sb.Build()
	var needs models.ProgramNeeds
	err := r.db.GetContext(ctx, &needs, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Error("Failed to get program needs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get program needs")
	}

	return &needs, nil
}

// Upsert writes the coach's program needs, replacing any existing row.
func (r *Repository) Upsert(ctx context.Context, needs *models.ProgramNeeds) error {
	ctx, span := tracing.StartSpan(ctx, "programneeds.Repository.Upsert")
	defer span.End()

	if needs.UpdatedAt.IsZero() {
		needs.UpdatedAt = time.Now().UTC()
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(programNeedsTable).
		Cols(append([]string{"coach_id"}, upsertColumns...)...).
		Values(
			needs.CoachID,
			needs.GradYears,
			needs.Positions,
			needs.PreferredRegions,
			needs.MinHeightInches,
			needs.MaxHeightInches,
			needs.MinPitchVelo,
			needs.MinExitVelo,
			needs.MaxSixtyTime,
			needs.UpdatedAt,
		)
	ib.OnConflictUpdate([]string{"coach_id"}, upsertColumns...)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", needs.CoachID).Error("Failed to upsert program needs")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save program needs")
	}

	r.logger.WithContext(ctx).WithField("coach_id", needs.CoachID).Debugf("Upserted %s", programNeedsTable)
	return nil
}
