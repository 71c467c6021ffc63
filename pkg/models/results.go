package models

// MatchResult is a player ranked against a coach's program needs.
type MatchResult struct {
	PlayerID          string          `json:"player_id"`
	FullName          string          `json:"full_name"`
	GradYear          *int            `json:"grad_year,omitempty"`
	PrimaryPosition   *string         `json:"primary_position,omitempty"`
	SecondaryPosition *string         `json:"secondary_position,omitempty"`
	HighSchoolState   *string         `json:"high_school_state,omitempty"`
	HighSchoolName    *string         `json:"high_school_name,omitempty"`
	HeightFeet        *int            `json:"height_feet,omitempty"`
	HeightInches      *int            `json:"height_inches,omitempty"`
	WeightLbs         *int            `json:"weight_lbs,omitempty"`
	AvatarURL         *string         `json:"avatar_url,omitempty"`
	TopSchools        []string        `json:"top_schools"`
	Metrics           ResolvedMetrics `json:"metrics"`
	MatchScore        int             `json:"match_score"`
	MatchReasons      []string        `json:"match_reasons"`
}

// TrendingResult is a player ranked by engagement momentum.
type TrendingResult struct {
	PlayerID         string          `json:"player_id"`
	FullName         string          `json:"full_name"`
	GradYear         *int            `json:"grad_year,omitempty"`
	PrimaryPosition  *string         `json:"primary_position,omitempty"`
	HighSchoolState  *string         `json:"high_school_state,omitempty"`
	AvatarURL        *string         `json:"avatar_url,omitempty"`
	HasVideo         bool            `json:"has_video"`
	VerifiedMetrics  bool            `json:"verified_metrics"`
	Metrics          ResolvedMetrics `json:"metrics"`
	RecentViews7d    int             `json:"recent_views_7d"`
	WatchlistAdds    int             `json:"watchlist_adds"`
	RecentUpdates30d int             `json:"recent_updates_30d"`
	TrendingScore    float64         `json:"trending_score"`
}

// RecruitFilters narrows discovery queries. Empty fields do not filter.
type RecruitFilters struct {
	GradYears []int64  `query:"grad_year" json:"grad_years"`
	Positions []string `query:"position" json:"positions"`
	Bats      string   `query:"bats" json:"bats" validate:"omitempty,oneof=R L S"`
	Throws    string   `query:"throws" json:"throws" validate:"omitempty,oneof=R L"`
}

// StatePlayerSummary is a discovery card for a player in a state.
type StatePlayerSummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	AvatarURL         *string  `json:"avatar_url,omitempty"`
	GradYear          *int     `json:"grad_year,omitempty"`
	State             string   `json:"state"`
	PrimaryPosition   *string  `json:"primary_position,omitempty"`
	SecondaryPosition *string  `json:"secondary_position,omitempty"`
	Height            *string  `json:"height,omitempty"`
	Weight            *int     `json:"weight,omitempty"`
	Metrics           []string `json:"metrics"`
	Verified          bool     `json:"verified"`
	Trending          bool     `json:"trending"`
	TopSchool         *string  `json:"top_school,omitempty"`
}

// StateRecruitCount aggregates onboarded players for one state.
type StateRecruitCount struct {
	Total  int         `json:"total"`
	ByYear map[int]int `json:"by_year"`
}

// StateGradYearCount is one grouped row of the state count query.
type StateGradYearCount struct {
	State    string `db:"high_school_state"`
	GradYear *int   `db:"grad_year"`
	Count    int    `db:"count"`
}

// PlayerQuery narrows a player fetch. Empty fields do not filter; positions
// match either the primary or the secondary position.
type PlayerQuery struct {
	GradYears     []int64
	Positions     []string
	States        []string
	Bats          string
	Throws        string
	OnboardedOnly bool
	HasGradYear   bool
	Limit         int
}
