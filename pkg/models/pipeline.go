package models

import "time"

// PipelineStatus is a coach's disposition toward a player. Any status can
// move to any other.
type PipelineStatus string

const (
	StatusWatchlist     PipelineStatus = "watchlist"
	StatusHighPriority  PipelineStatus = "high_priority"
	StatusOfferExtended PipelineStatus = "offer_extended"
	StatusCommitted     PipelineStatus = "committed"
	StatusUninterested  PipelineStatus = "uninterested"
)

var PipelineStatuses = []PipelineStatus{
	StatusWatchlist,
	StatusHighPriority,
	StatusOfferExtended,
	StatusCommitted,
	StatusUninterested,
}

func (s PipelineStatus) Valid() bool {
	for _, status := range PipelineStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WatchlistEntry is a row in recruit_watchlist.
type WatchlistEntry struct {
	ID           string         `db:"id" json:"id"`
	CoachID      string         `db:"coach_id" json:"coach_id"`
	PlayerID     string         `db:"player_id" json:"player_id"`
	Status       PipelineStatus `db:"status" json:"status"`
	PositionRole *string        `db:"position_role" json:"position_role,omitempty"`
	Notes        *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// LegacyRecruit is a row in the recruits table, which tracks the same
// relationship with a display stage and an A/B/C priority.
type LegacyRecruit struct {
	ID              string    `db:"id" json:"id"`
	CoachID         string    `db:"coach_id" json:"coach_id"`
	PlayerID        *string   `db:"player_id" json:"player_id,omitempty"`
	Name            string    `db:"name" json:"name"`
	GradYear        *string   `db:"grad_year" json:"grad_year,omitempty"`
	PrimaryPosition *string   `db:"primary_position" json:"primary_position,omitempty"`
	HighSchoolName  *string   `db:"high_school_name" json:"high_school_name,omitempty"`
	HighSchoolState *string   `db:"high_school_state" json:"high_school_state,omitempty"`
	Stage           string    `db:"stage" json:"stage"`
	Priority        string    `db:"priority" json:"priority"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PipelineSource names the store a pipeline read was served from.
type PipelineSource string

const (
	PipelineSourceWatchlist PipelineSource = "recruit_watchlist"
	PipelineSourceLegacy    PipelineSource = "recruits"
)

// PipelineEntry is the unified view of a (coach, player) pipeline record.
type PipelineEntry struct {
	ID           string         `json:"id"`
	CoachID      string         `json:"coach_id"`
	PlayerID     string         `json:"player_id"`
	Status       PipelineStatus `json:"status"`
	PositionRole *string        `json:"position_role,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Source       PipelineSource `json:"source"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Player       *PlayerSummary `json:"player,omitempty"`
}

type AddToPipelineRequest struct {
	PlayerID string         `json:"player_id" validate:"required"`
	Status   PipelineStatus `json:"status" validate:"omitempty,oneof=watchlist high_priority offer_extended committed uninterested"`
}

type UpdatePipelineStatusRequest struct {
	Status PipelineStatus `json:"status" validate:"required,oneof=watchlist high_priority offer_extended committed uninterested"`
}

type AppendNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}
