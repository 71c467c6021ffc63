// Package events publishes pipeline lifecycle and audit events
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

const (
	TypeEntryAdded          = "pipeline.entry_added"
	TypeEntryMigrated       = "pipeline.entry_migrated"
	TypeStatusUpdated       = "pipeline.status_updated"
	TypeNoteAppended        = "pipeline.note_appended"
	TypeEntryRemoved        = "pipeline.entry_removed"
	TypeLegacyWriteFailed   = "pipeline.legacy_write_failed"
	TypeRemovalInconsistent = "pipeline.removal_inconsistent"
)

// PipelineEvent describes a change to a coach's pipeline.
type PipelineEvent struct {
	SchemaVersion string                `json:"schema_version"`
	EventType     string                `json:"event_type"`
	CoachID       string                `json:"coach_id"`
	PlayerID      string                `json:"player_id,omitempty"`
	EntryID       string                `json:"entry_id,omitempty"`
	Status        models.PipelineStatus `json:"status,omitempty"`
	Source        models.PipelineSource `json:"source,omitempty"`
	Operation     string                `json:"operation,omitempty"`
	Error         string                `json:"error,omitempty"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// Publisher writes a keyed JSON payload to the event stream.
type Publisher interface {
	Publish(ctx context.Context, key string, headers map[string]string, payload any) error
}

// Emitter handles event emission for the pipeline
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitPipelineEvent publishes the event keyed by coach so a coach's events
// stay ordered on one partition.
func (e *Emitter) EmitPipelineEvent(ctx context.Context, event PipelineEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPipelineEvent")
	defer span.End()

	event.SchemaVersion = SchemaVersion
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	headers := map[string]string{
		"event_type":     event.EventType,
		"schema_version": SchemaVersion,
	}

	if err := e.publisher.Publish(ctx, event.CoachID, headers, event); err != nil {
		tracing.Fail(span, err)
		metrics.EventsPublished.WithLabelValues(event.EventType, "error").Inc()
		e.logger.WithContext(ctx).WithError(err).WithField("event_type", event.EventType).Error("Failed to emit pipeline event")
		return err
	}

	metrics.EventsPublished.WithLabelValues(event.EventType, "success").Inc()
	return nil
}
