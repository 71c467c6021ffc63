package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const watchlistTable = "recruit_watchlist"

var entryStruct = database.NewStruct(new(models.WatchlistEntry))

// Repository handles recruit_watchlist persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new watchlist repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByCoachAndPlayer returns the pair's entry, or nil when there is none.
func (r *Repository) GetByCoachAndPlayer(ctx context.Context, coachID, playerID string) (*models.WatchlistEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.GetByCoachAndPlayer")
	defer span.End()

	sb := entryStruct.SelectFrom(watchlistTable)
	sb.Where(sb.Equal("coach_id", coachID), sb.Equal("player_id", playerID))

	query, args := sb.Build()
	var entry models.WatchlistEntry
	err := r.db.GetContext(ctx, &entry, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  coachID,
			"player_id": playerID,
		}).Error("Failed to get watchlist entry")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get watchlist entry")
	}

	return &entry, nil
}

// GetByID returns one of the coach's entries by id, or nil when the coach has
// no such entry.
func (r *Repository) GetByID(ctx context.Context, coachID, id string) (*models.WatchlistEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.GetByID")
	defer span.End()

	sb := entryStruct.SelectFrom(watchlistTable)
	sb.Where(sb.Equal("coach_id", coachID), sb.Equal("id", id))

	query, args := sb.Build()
	var entry models.WatchlistEntry
	err := r.db.GetContext(ctx, &entry, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id": coachID,
			"entry_id": id,
		}).Error("Failed to get watchlist entry")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get watchlist entry")
	}

	return &entry, nil
}

// ListByCoach returns the coach's entries, most recently updated first.
func (r *Repository) ListByCoach(ctx context.Context, coachID string) ([]models.WatchlistEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.ListByCoach")
	defer span.End()

	sb := entryStruct.SelectFrom(watchlistTable)
	sb.Where(sb.Equal("coach_id", coachID))
	sb.OrderBy("updated_at").Desc()

	query, args := sb.Build()
	var entries []models.WatchlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Error("Failed to list watchlist entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list watchlist entries")
	}

	return entries, nil
}

// Create inserts an entry. A second entry for the same pair is a conflict.
func (r *Repository) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.Create")
	defer span.End()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(watchlistTable).
		Cols("id", "coach_id", "player_id", "status", "position_role", "notes", "created_at", "updated_at").
		Values(entry.ID, entry.CoachID, entry.PlayerID, entry.Status, entry.PositionRole, entry.Notes, entry.CreatedAt, entry.UpdatedAt)
	ib.OnConflictDoNothing()

	query, args := ib.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  entry.CoachID,
			"player_id": entry.PlayerID,
		}).Error("Failed to create watchlist entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create watchlist entry")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return httperror.NewHTTPErrorf(http.StatusConflict, "player %s is already on the pipeline", entry.PlayerID)
	}

	r.logger.WithContext(ctx).WithField("entry_id", entry.ID).Debugf("Created %s", watchlistTable)
	return nil
}

// update sets column/value pairs on one of the coach's entries.
func (r *Repository) update(ctx context.Context, op, coachID, id string, values map[string]any) error {
	ub := database.NewUpdateBuilder()
	assignments := make([]string, 0, len(values))
	for col, val := range values {
		assignments = append(assignments, ub.Assign(col, val))
	}
	ub.Update(watchlistTable).
		Set(assignments...).
		Where(ub.Equal("id", id), ub.Equal("coach_id", coachID))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id": coachID,
			"entry_id": id,
		}).Errorf("Failed to update watchlist %s", op)
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update watchlist %s", op)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update watchlist %s", op)
	}
	if n == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "watchlist entry %s does not exist", id)
	}
	return nil
}

// UpdateStatus sets an entry's status. Entries of other coaches are not found.
func (r *Repository) UpdateStatus(ctx context.Context, coachID, id string, status models.PipelineStatus, updatedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.UpdateStatus")
	defer span.End()

	err := r.update(ctx, "status", coachID, id, map[string]any{
		"status":     status,
		"updated_at": updatedAt,
	})
	if err != nil {
		tracing.Fail(span, err)
	}
	return err
}

// UpdateNotes replaces an entry's notes text.
func (r *Repository) UpdateNotes(ctx context.Context, coachID, id, notes string, updatedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.UpdateNotes")
	defer span.End()

	err := r.update(ctx, "notes", coachID, id, map[string]any{
		"notes":      notes,
		"updated_at": updatedAt,
	})
	if err != nil {
		tracing.Fail(span, err)
	}
	return err
}

// DeleteByCoachAndPlayer removes the pair. Removing an absent pair succeeds.
func (r *Repository) DeleteByCoachAndPlayer(ctx context.Context, coachID, playerID string) error {
	ctx, span := tracing.StartSpan(ctx, "watchlist.Repository.DeleteByCoachAndPlayer")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(watchlistTable).
		Where(del.Equal("coach_id", coachID), del.Equal("player_id", playerID))

	query, args := del.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		tracing.Fail(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"coach_id":  coachID,
			"player_id": playerID,
		}).Error("Failed to delete watchlist entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete watchlist entry")
	}

	return nil
}
