// Package scoring ranks players for coaches. Trending scores measure
// engagement momentum; match scores measure fit against a program's needs.
// All weights come from a single Weights table so product can tune them
// through configuration and tests can pin them.
package scoring

// TrendingWeights weighs engagement signals. The score is unbounded.
type TrendingWeights struct {
	Views             float64 `koanf:"views" yaml:"views"`
	WatchlistAdds     float64 `koanf:"watchlist_adds" yaml:"watchlist_adds"`
	ProfileUpdates    float64 `koanf:"profile_updates" yaml:"profile_updates"`
	Recency           float64 `koanf:"recency" yaml:"recency"`
	RecencyWindowDays int     `koanf:"recency_window_days" yaml:"recency_window_days"`
	VideoBonus        float64 `koanf:"video_bonus" yaml:"video_bonus"`
}

// ScoreCeiling is the highest match score any weight table can produce.
const ScoreCeiling = 100

// MatchWeights are the points awarded per satisfied need.
type MatchWeights struct {
	PrimaryPosition   int `koanf:"primary_position" yaml:"primary_position"`
	SecondaryPosition int `koanf:"secondary_position" yaml:"secondary_position"`
	PreferredRegion   int `koanf:"preferred_region" yaml:"preferred_region"`
	ThrowVelo         int `koanf:"throw_velo" yaml:"throw_velo"`
	ExitVelo          int `koanf:"exit_velo" yaml:"exit_velo"`
	SixtyTime         int `koanf:"sixty_time" yaml:"sixty_time"`
	MinHeight         int `koanf:"min_height" yaml:"min_height"`
	MaxHeight         int `koanf:"max_height" yaml:"max_height"`
	ProgramInterest   int `koanf:"program_interest" yaml:"program_interest"`
	TopSchoolsListed  int `koanf:"top_schools_listed" yaml:"top_schools_listed"`
	MaxScore          int `koanf:"max_score" yaml:"max_score"`
}

// Ceiling returns the clamp applied to match scores: MaxScore when it lies in
// 1..ScoreCeiling, otherwise ScoreCeiling.
func (w MatchWeights) Ceiling() int {
	if w.MaxScore <= 0 || w.MaxScore > ScoreCeiling {
		return ScoreCeiling
	}
	return w.MaxScore
}

// Limits bound the fetch and result sizes of ranking queries.
type Limits struct {
	CandidatePoolSize     int `koanf:"candidate_pool_size" yaml:"candidate_pool_size"`
	ResultLimit           int `koanf:"result_limit" yaml:"result_limit"`
	TrendingViewThreshold int `koanf:"trending_view_threshold" yaml:"trending_view_threshold"`
	DiscoverMetricLimit   int `koanf:"discover_metric_limit" yaml:"discover_metric_limit"`
}

type Weights struct {
	Trending TrendingWeights `koanf:"trending" yaml:"trending"`
	Match    MatchWeights    `koanf:"match" yaml:"match"`
	Limits   Limits          `koanf:"limits" yaml:"limits"`
}

func DefaultWeights() Weights {
	return Weights{
		Trending: TrendingWeights{
			Views:             1.5,
			WatchlistAdds:     3,
			ProfileUpdates:    2,
			Recency:           2,
			RecencyWindowDays: 14,
			VideoBonus:        10,
		},
		Match: MatchWeights{
			PrimaryPosition:   30,
			SecondaryPosition: 15,
			PreferredRegion:   20,
			ThrowVelo:         20,
			ExitVelo:          15,
			SixtyTime:         10,
			MinHeight:         5,
			MaxHeight:         5,
			ProgramInterest:   10,
			TopSchoolsListed:  5,
			MaxScore:          100,
		},
		Limits: Limits{
			CandidatePoolSize:     100,
			ResultLimit:           20,
			TrendingViewThreshold: 10,
			DiscoverMetricLimit:   5,
		},
	}
}
