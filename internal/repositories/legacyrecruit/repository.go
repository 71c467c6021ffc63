package legacyrecruit

import (
	"context"
	"database/sql"
	"errors"
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

const recruitsTable = "recruits"

var recruitStruct = database.NewStruct(new(models.LegacyRecruit))

// Repository handles the legacy recruits table
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new legacy recruit repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByCoachAndPlayer returns the pair's recruit row, or nil when there is none.
func (r *Repository) GetByCoachAndPlayer(ctx context.Context, coachID, playerID string) (*models.LegacyRecruit, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.GetByCoachAndPlayer")
	defer span.End()

	sb := recruitStruct.SelectFrom(recruitsTable)
	sb.Where(sb.Equal("coach_id", coachID), sb.Equal("player_id", playerID))
	sb.Limit(1)

	query, args := sb.Build()
	var recruit models.LegacyRecruit
	err := r.db.GetContext(ctx, &recruit, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  coachID,
			"player_id": playerID,
		}).Error("Failed to get legacy recruit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get legacy recruit")
	}

	return &recruit, nil
}

// ListByCoach returns every recruits row for the coach, including rows not
// linked to a player profile.
func (r *Repository) ListByCoach(ctx context.Context, coachID string) ([]models.LegacyRecruit, error) {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.ListByCoach")
	defer span.End()

	sb := recruitStruct.SelectFrom(recruitsTable)
	sb.Where(sb.Equal("coach_id", coachID))
	sb.OrderBy("updated_at").Desc()

	query, args := sb.Build()
	var recruits []models.LegacyRecruit
	if err := r.db.SelectContext(ctx, &recruits, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Error("Failed to list legacy recruits")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list legacy recruits")
	}

	return recruits, nil
}

func (r *Repository) Create(ctx context.Context, recruit *models.LegacyRecruit) error {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.Create")
	defer span.End()

	if recruit.ID == "" {
		recruit.ID = uuid.NewString()
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(recruitsTable).
		Cols("id", "coach_id", "player_id", "name", "grad_year", "primary_position", "high_school_name",
			"high_school_state", "stage", "priority", "notes", "created_at", "updated_at").
		Values(recruit.ID, recruit.CoachID, recruit.PlayerID, recruit.Name, recruit.GradYear, recruit.PrimaryPosition,
			recruit.HighSchoolName, recruit.HighSchoolState, recruit.Stage, recruit.Priority, recruit.Notes,
			recruit.CreatedAt, recruit.UpdatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  recruit.CoachID,
			"player_id": models.Deref(recruit.PlayerID),
		}).Error("Failed to create legacy recruit")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create legacy recruit")
	}

	return nil
}

func (r *Repository) exec(ctx context.Context, op, coachID, id string, build func(ub *sqlbuilder.UpdateBuilder)) error {
	ub := database.NewUpdateBuilder()
	ub.Update(recruitsTable)
	build(ub)
	ub.Where(ub.Equal("id", id), ub.Equal("coach_id", coachID))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":   coachID,
			"recruit_id": id,
		}).Errorf("Failed to update legacy recruit %s", op)
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update legacy recruit %s", op)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update legacy recruit %s", op)
	}
	if n == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "recruit %s does not exist", id)
	}
	return nil
}

// UpdateStage writes the display stage and priority letter.
func (r *Repository) UpdateStage(ctx context.Context, coachID, id, stage, priority string, updatedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.UpdateStage")
	defer span.End()

	err := r.exec(ctx, "stage", coachID, id, func(ub *sqlbuilder.UpdateBuilder) {
		ub.Set(
			ub.Assign("stage", stage),
			ub.Assign("priority", priority),
			ub.Assign("updated_at", updatedAt),
		)
	})
	if err != nil {
		tracing.Fail(span, err)
	}
	return err
}

func (r *Repository) UpdateNotes(ctx context.Context, coachID, id, notes string, updatedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.UpdateNotes")
	defer span.End()

	err := r.exec(ctx, "notes", coachID, id, func(ub *sqlbuilder.UpdateBuilder) {
		ub.Set(
			ub.Assign("notes", notes),
			ub.Assign("updated_at", updatedAt),
		)
	})
	if err != nil {
		tracing.Fail(span, err)
	}
	return err
}

// DeleteByCoachAndPlayer removes the pair's rows. Removing an absent pair
// succeeds.
func (r *Repository) DeleteByCoachAndPlayer(ctx context.Context, coachID, playerID string) error {
	ctx, span := tracing.StartSpan(ctx, "legacyrecruit.Repository.DeleteByCoachAndPlayer")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(recruitsTable).
		Where(del.Equal("coach_id", coachID), del.Equal("player_id", playerID))

	query, args := del.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  coachID,
			"player_id": playerID,
		}).Error("Failed to delete legacy recruit")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete legacy recruit")
	}

	return nil
}
