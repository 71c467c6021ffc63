package models

import "time"

// PlayerMetric is a free-text measurement row. Kind is the classified
// category stored at ingestion and is nil on rows written before
// classification existed.
type PlayerMetric struct {
	ID           string     `db:"id" json:"id"`
	PlayerID     string     `db:"player_id" json:"player_id"`
	Label        string     `db:"metric_label" json:"metric_label"`
	Value        string     `db:"metric_value" json:"metric_value"`
	Kind         *string    `db:"metric_kind" json:"metric_kind,omitempty"`
	VerifiedDate *time.Time `db:"verified_date" json:"verified_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ResolvedMetrics holds the typed values extracted from a player's metric
// rows. Nil means the metric is absent or unparseable.
type ResolvedMetrics struct {
	ThrowVelo *float64 `json:"pitch_velo"`
	ExitVelo  *float64 `json:"exit_velo"`
	SixtyTime *float64 `json:"sixty_time"`
}

type RecordMetricRequest struct {
	Label        string     `json:"metric_label" validate:"required,max=100"`
	Value        string     `json:"metric_value" validate:"required,max=100"`
	VerifiedDate *time.Time `json:"verified_date,omitempty"`
}
