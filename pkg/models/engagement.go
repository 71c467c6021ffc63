package models

import "time"

// Engagement is the per-player activity rollup maintained outside this service.
type Engagement struct {
	PlayerID           string     `db:"player_id" json:"player_id"`
	RecentViews7d      int        `db:"recent_views_7d" json:"recent_views_7d"`
	WatchlistAddsCount int        `db:"watchlist_adds_count" json:"watchlist_adds_count"`
	RecentUpdates30d   int        `db:"recent_updates_30d" json:"recent_updates_30d"`
	LastActivityAt     *time.Time `db:"last_activity_at" json:"last_activity_at,omitempty"`
}
