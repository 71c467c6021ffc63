// Package pipeline keeps a coach's recruiting pipeline consistent across the
// recruit_watchlist table and the older recruits table. recruit_watchlist is
// authoritative; recruits is written best-effort so existing readers of it
// keep working.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// WatchlistStore reads and writes recruit_watchlist. Get methods return nil
// with no error when the row does not exist. Update methods return a 404
// httperror when no row matched.
type WatchlistStore interface {
	GetByCoachAndPlayer(ctx context.Context, coachID, playerID string) (*models.WatchlistEntry, error)
	GetByID(ctx context.Context, coachID, id string) (*models.WatchlistEntry, error)
	ListByCoach(ctx context.Context, coachID string) ([]models.WatchlistEntry, error)
	Create(ctx context.Context, entry *models.WatchlistEntry) error
	UpdateStatus(ctx context.Context, coachID, id string, status models.PipelineStatus, updatedAt time.Time) error
	UpdateNotes(ctx context.Context, coachID, id, notes string, updatedAt time.Time) error
	DeleteByCoachAndPlayer(ctx context.Context, coachID, playerID string) error
}

// LegacyStore reads and writes the recruits table with the same conventions
// as WatchlistStore.
type LegacyStore interface {
	GetByCoachAndPlayer(ctx context.Context, coachID, playerID string) (*models.LegacyRecruit, error)
	ListByCoach(ctx context.Context, coachID string) ([]models.LegacyRecruit, error)
	Create(ctx context.Context, recruit *models.LegacyRecruit) error
	UpdateStage(ctx context.Context, coachID, id, stage, priority string, updatedAt time.Time) error
	UpdateNotes(ctx context.Context, coachID, id, notes string, updatedAt time.Time) error
	DeleteByCoachAndPlayer(ctx context.Context, coachID, playerID string) error
}

type PlayerSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Player, error)
}

type MetricsResolver interface {
	ResolveForPlayers(ctx context.Context, playerIDs []string) (map[string]models.ResolvedMetrics, error)
}

type EventEmitter interface {
	EmitPipelineEvent(ctx context.Context, event events.PipelineEvent) error
}

const noteTimeLayout = time.RFC3339

// Reconciler performs pipeline reads and writes against both stores.
type Reconciler struct {
	watchlist WatchlistStore
	legacy    LegacyStore
	players   PlayerSource
	metrics   MetricsResolver
	emitter   EventEmitter
	logger    ectologger.Logger
	now       func() time.Time
}

// NewReconciler creates a reconciler. emitter may be nil.
func NewReconciler(watchlist WatchlistStore, legacy LegacyStore, players PlayerSource, resolver MetricsResolver, emitter EventEmitter, logger ectologger.Logger) *Reconciler {
	return &Reconciler{
		watchlist: watchlist,
		legacy:    legacy,
		players:   players,
		metrics:   resolver,
		emitter:   emitter,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *Reconciler) emit(ctx context.Context, event events.PipelineEvent) {
	if r.emitter == nil {
		return
	}
	event.OccurredAt = r.now().UTC()
	// failures are logged by the emitter
	_ = r.emitter.EmitPipelineEvent(ctx, event)
}

func (r *Reconciler) recordMutation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PipelineMutationsTotal.WithLabelValues(operation, status).Inc()
}

// legacyWriteFailed records a failed best-effort write to recruits. The
// caller's operation still succeeds.
func (r *Reconciler) legacyWriteFailed(ctx context.Context, operation, coachID, playerID string, err error) {
	r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
		"operation": operation,
		"coach_id":  coachID,
		"player_id": playerID,
	}).Warn("Legacy recruits write failed")

	metrics.LegacyWriteFailures.WithLabelValues(operation).Inc()

	r.emit(ctx, events.PipelineEvent{
		EventType: events.TypeLegacyWriteFailed,
		CoachID:   coachID,
		PlayerID:  playerID,
		Source:    models.PipelineSourceLegacy,
		Operation: operation,
		Error:     err.Error(),
	})
}

func isNotFound(err error) bool {
	return err != nil && httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound
}

// AddToPipeline puts a player on the coach's pipeline with the given status,
// or moves an existing entry to that status. An empty status means
// watchlist. A pair that only exists in recruits is migrated into
// recruit_watchlist, keeping its notes and creation time.
func (r *Reconciler) AddToPipeline(ctx context.Context, coachID, playerID string, status models.PipelineStatus) (entry *models.PipelineEntry, err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.AddToPipeline")
	defer span.End()
	defer func() { r.recordMutation("add", err) }()

	if status == "" {
		status = models.StatusWatchlist
	}
	if !status.Valid() {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid pipeline status %q", status)
	}

	logger := r.logger.WithContext(ctx).WithFields(map[string]any{
		"coach_id":  coachID,
		"player_id": playerID,
		"status":    status,
	})
	now := r.now().UTC()

	existing, err := r.watchlist.GetByCoachAndPlayer(ctx, coachID, playerID)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	if existing != nil {
		if err := r.watchlist.UpdateStatus(ctx, coachID, existing.ID, status, now); err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		existing.Status = status
		existing.UpdatedAt = now

		if lr, lerr := r.legacy.GetByCoachAndPlayer(ctx, coachID, playerID); lerr != nil {
			r.legacyWriteFailed(ctx, "add", coachID, playerID, lerr)
		} else if lr != nil {
			if lerr := r.legacy.UpdateStage(ctx, coachID, lr.ID, ToLegacy(status), PriorityFor(status), now); lerr != nil {
				r.legacyWriteFailed(ctx, "add", coachID, playerID, lerr)
			}
		}

		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeStatusUpdated,
			CoachID:   coachID,
			PlayerID:  playerID,
			EntryID:   existing.ID,
			Status:    status,
			Source:    models.PipelineSourceWatchlist,
		})

		result := fromWatchlistEntry(*existing)
		return &result, nil
	}

	legacyRow, lerr := r.legacy.GetByCoachAndPlayer(ctx, coachID, playerID)
	if lerr != nil {
		// treated as absent; the insert below may then collide and be swallowed
		logger.WithError(lerr).Warn("Failed to read legacy recruit before add")
		legacyRow = nil
	}

	created := &models.WatchlistEntry{
		ID:        uuid.NewString(),
		CoachID:   coachID,
		PlayerID:  playerID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if legacyRow != nil {
		created.Notes = legacyRow.Notes
		created.CreatedAt = legacyRow.CreatedAt
	}

	if err := r.watchlist.Create(ctx, created); err != nil {
		tracing.Fail(span, err)
		logger.WithError(err).Error("Failed to create watchlist entry")
		return nil, err
	}

	if legacyRow != nil {
		if err := r.legacy.UpdateStage(ctx, coachID, legacyRow.ID, ToLegacy(status), PriorityFor(status), now); err != nil {
			r.legacyWriteFailed(ctx, "add", coachID, playerID, err)
		}

		logger.WithField("legacy_stage", legacyRow.Stage).Info("Migrated legacy recruit into watchlist")
		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeEntryMigrated,
			CoachID:   coachID,
			PlayerID:  playerID,
			EntryID:   created.ID,
			Status:    status,
			Source:    models.PipelineSourceWatchlist,
		})
	} else {
		r.createLegacyRecruit(ctx, created)
		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeEntryAdded,
			CoachID:   coachID,
			PlayerID:  playerID,
			EntryID:   created.ID,
			Status:    status,
			Source:    models.PipelineSourceWatchlist,
		})
	}

	result := fromWatchlistEntry(*created)
	return &result, nil
}

// createLegacyRecruit mirrors a new watchlist entry into recruits with the
// player's display fields copied in.
func (r *Reconciler) createLegacyRecruit(ctx context.Context, entry *models.WatchlistEntry) {
	players, err := r.players.GetByIDs(ctx, []string{entry.PlayerID})
	if err != nil {
		r.legacyWriteFailed(ctx, "add", entry.CoachID, entry.PlayerID, err)
		return
	}
	if len(players) == 0 {
		r.legacyWriteFailed(ctx, "add", entry.CoachID, entry.PlayerID, fmt.Errorf("player %s not found", entry.PlayerID))
		return
	}

	recruit := LegacyRecruitFor(players[0], entry.CoachID, entry.Status, entry.CreatedAt)
	if err := r.legacy.Create(ctx, &recruit); err != nil {
		r.legacyWriteFailed(ctx, "add", entry.CoachID, entry.PlayerID, err)
	}
}

// UpdateStatus sets the status of a pipeline entry by id. The id may belong
// to either store; recruit_watchlist is tried first.
func (r *Reconciler) UpdateStatus(ctx context.Context, coachID, entryID string, status models.PipelineStatus) (err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.UpdateStatus")
	defer span.End()
	defer func() { r.recordMutation("update_status", err) }()

	if !status.Valid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid pipeline status %q", status)
	}

	logger := r.logger.WithContext(ctx).WithFields(map[string]any{
		"coach_id": coachID,
		"entry_id": entryID,
		"status":   status,
	})
	now := r.now().UTC()

	werr := r.watchlist.UpdateStatus(ctx, coachID, entryID, status, now)
	if werr == nil {
		playerID := r.syncLegacyStage(ctx, coachID, entryID, status, now)
		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeStatusUpdated,
			CoachID:   coachID,
			PlayerID:  playerID,
			EntryID:   entryID,
			Status:    status,
			Source:    models.PipelineSourceWatchlist,
		})
		return nil
	}
	if !isNotFound(werr) {
		logger.WithError(werr).Warn("Watchlist status update failed, trying legacy recruits")
	}

	lerr := r.legacy.UpdateStage(ctx, coachID, entryID, ToLegacy(status), PriorityFor(status), now)
	if lerr == nil {
		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeStatusUpdated,
			CoachID:   coachID,
			EntryID:   entryID,
			Status:    status,
			Source:    models.PipelineSourceLegacy,
		})
		return nil
	}

	if isNotFound(werr) && isNotFound(lerr) {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "pipeline entry %s not found", entryID)
	}

	tracing.Fail(span, lerr)
	logger.WithError(lerr).Error("Failed to update pipeline status in either store")
	return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update pipeline status")
}

// syncLegacyStage moves the pair's recruits row to the stage for status
// after a watchlist entry changed. It returns the entry's player id, empty
// when the entry could not be read back.
func (r *Reconciler) syncLegacyStage(ctx context.Context, coachID, entryID string, status models.PipelineStatus, now time.Time) string {
	entry, err := r.watchlist.GetByID(ctx, coachID, entryID)
	if err != nil {
		r.legacyWriteFailed(ctx, "update_status", coachID, "", err)
		return ""
	}
	if entry == nil {
		return ""
	}

	lr, err := r.legacy.GetByCoachAndPlayer(ctx, coachID, entry.PlayerID)
	if err != nil {
		r.legacyWriteFailed(ctx, "update_status", coachID, entry.PlayerID, err)
		return entry.PlayerID
	}
	if lr == nil {
		return entry.PlayerID
	}
	if err := r.legacy.UpdateStage(ctx, coachID, lr.ID, ToLegacy(status), PriorityFor(status), now); err != nil {
		r.legacyWriteFailed(ctx, "update_status", coachID, entry.PlayerID, err)
	}
	return entry.PlayerID
}

func appendNote(existing *string, line string) string {
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return line
	}
	return *existing + "\n\n" + line
}

// AppendNote adds a timestamped note to the coach's entry for the player,
// creating a watchlist entry when there is none. Notes are never replaced.
func (r *Reconciler) AppendNote(ctx context.Context, coachID, playerID, text string) (entry *models.PipelineEntry, err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.AppendNote")
	defer span.End()
	defer func() { r.recordMutation("append_note", err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "note text is required")
	}

	now := r.now().UTC()
	line := fmt.Sprintf("[%s] %s", now.Format(noteTimeLayout), text)

	current, err := r.watchlist.GetByCoachAndPlayer(ctx, coachID, playerID)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	if current != nil {
		notes := appendNote(current.Notes, line)
		if err := r.watchlist.UpdateNotes(ctx, coachID, current.ID, notes, now); err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		current.Notes = &notes
		current.UpdatedAt = now
	} else {
		current = &models.WatchlistEntry{
			ID:        uuid.NewString(),
			CoachID:   coachID,
			PlayerID:  playerID,
			Status:    models.StatusWatchlist,
			Notes:     &line,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.watchlist.Create(ctx, current); err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
	}

	if lr, lerr := r.legacy.GetByCoachAndPlayer(ctx, coachID, playerID); lerr != nil {
		r.legacyWriteFailed(ctx, "append_note", coachID, playerID, lerr)
	} else if lr != nil {
		if lerr := r.legacy.UpdateNotes(ctx, coachID, lr.ID, appendNote(lr.Notes, line), now); lerr != nil {
			r.legacyWriteFailed(ctx, "append_note", coachID, playerID, lerr)
		}
	}

	r.emit(ctx, events.PipelineEvent{
		EventType: events.TypeNoteAppended,
		CoachID:   coachID,
		PlayerID:  playerID,
		EntryID:   current.ID,
		Source:    models.PipelineSourceWatchlist,
	})

	result := fromWatchlistEntry(*current)
	return &result, nil
}

// Remove deletes the pair from both stores. It succeeds only when both
// deletes succeed; deleting a pair that is not there is not an error.
func (r *Reconciler) Remove(ctx context.Context, coachID, playerID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.Remove")
	defer span.End()
	defer func() { r.recordMutation("remove", err) }()

	logger := r.logger.WithContext(ctx).WithFields(map[string]any{
		"coach_id":  coachID,
		"player_id": playerID,
	})

	werr := r.watchlist.DeleteByCoachAndPlayer(ctx, coachID, playerID)
	lerr := r.legacy.DeleteByCoachAndPlayer(ctx, coachID, playerID)

	switch {
	case werr == nil && lerr == nil:
		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeEntryRemoved,
			CoachID:   coachID,
			PlayerID:  playerID,
		})
		return nil

	case werr != nil && lerr != nil:
		tracing.Fail(span, werr)
		logger.WithError(werr).WithField("legacy_error", lerr.Error()).Error("Failed to remove player from pipeline")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove player from pipeline")

	default:
		failed, source := werr, models.PipelineSourceWatchlist
		if failed == nil {
			failed, source = lerr, models.PipelineSourceLegacy
		}
		tracing.Fail(span, failed)
		metrics.RemovalInconsistencies.Inc()
		logger.WithError(failed).WithField("failed_store", source).Error("Player removed from only one pipeline store")

		r.emit(ctx, events.PipelineEvent{
			EventType: events.TypeRemovalInconsistent,
			CoachID:   coachID,
			PlayerID:  playerID,
			Source:    source,
			Operation: "remove",
			Error:     failed.Error(),
		})
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "player was not removed from %s", source)
	}
}

// ReadPipeline returns the coach's pipeline from recruit_watchlist, or from
// recruits when the coach has no watchlist rows at all. The two are never
// merged. Entries whose player no longer exists are dropped.
func (r *Reconciler) ReadPipeline(ctx context.Context, coachID string) ([]models.PipelineEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.ReadPipeline")
	defer span.End()

	rows, err := r.watchlist.ListByCoach(ctx, coachID)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	var entries []models.PipelineEntry
	source := models.PipelineSourceWatchlist
	if len(rows) > 0 {
		entries = ectolinq.Map(rows, fromWatchlistEntry)
	} else {
		source = models.PipelineSourceLegacy
		legacyRows, err := r.legacy.ListByCoach(ctx, coachID)
		if err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		linked := ectolinq.Filter(legacyRows, func(lr models.LegacyRecruit) bool {
			return models.Deref(lr.PlayerID) != ""
		})
		entries = ectolinq.Map(linked, FromLegacyRecruit)
	}
	metrics.PipelineReadSource.WithLabelValues(string(source)).Inc()

	if len(entries) == 0 {
		return []models.PipelineEntry{}, nil
	}

	ids := ectolinq.Map(entries, func(e models.PipelineEntry) string { return e.PlayerID })
	players, err := r.players.GetByIDs(ctx, ids)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	resolved, err := r.metrics.ResolveForPlayers(ctx, ids)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	byID := make(map[string]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	enriched := make([]models.PipelineEntry, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.PlayerID]
		if !ok {
			continue
		}
		summary := p.Summary(resolved[p.ID])
		e.Player = &summary
		enriched = append(enriched, e)
	}

	return enriched, nil
}

// IsOnPipeline reports whether the pair exists in either store.
func (r *Reconciler) IsOnPipeline(ctx context.Context, coachID, playerID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Reconciler.IsOnPipeline")
	defer span.End()

	entry, err := r.watchlist.GetByCoachAndPlayer(ctx, coachID, playerID)
	if err != nil {
		tracing.Fail(span, err)
		return false, err
	}
	if entry != nil {
		return true, nil
	}

	legacyRow, err := r.legacy.GetByCoachAndPlayer(ctx, coachID, playerID)
	if err != nil {
		tracing.Fail(span, err)
		return false, err
	}
	return legacyRow != nil, nil
}

func fromWatchlistEntry(e models.WatchlistEntry) models.PipelineEntry {
	return models.PipelineEntry{
		ID:           e.ID,
		CoachID:      e.CoachID,
		PlayerID:     e.PlayerID,
		Status:       e.Status,
		PositionRole: e.PositionRole,
		Notes:        e.Notes,
		Source:       models.PipelineSourceWatchlist,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
