package scoring

import (
	"sort"
	"time"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/clover/pkg/models"
)

// RecencyBonus counts the days left in the recency window since the player's
// last activity. Unknown activity earns nothing; future timestamps count as
// today.
func RecencyBonus(lastActivity *time.Time, now time.Time, windowDays int) float64 {
	if lastActivity == nil {
		return 0
	}
	days := int(now.Sub(*lastActivity).Hours() / 24)
	if days < 0 {
		days = 0
	}
	remaining := windowDays - days
	if remaining < 0 {
		return 0
	}
	return float64(remaining)
}

// TrendingScore combines engagement counters into one non-negative score.
func TrendingScore(e models.Engagement, hasVideo bool, now time.Time, w TrendingWeights) float64 {
	score := float64(max(e.RecentViews7d, 0))*w.Views +
		float64(max(e.WatchlistAddsCount, 0))*w.WatchlistAdds +
		float64(max(e.RecentUpdates30d, 0))*w.ProfileUpdates +
		RecencyBonus(e.LastActivityAt, now, w.RecencyWindowDays)*w.Recency
	if hasVideo {
		score += w.VideoBonus
	}
	return score
}

type TrendingCandidate struct {
	Player     models.Player
	Engagement models.Engagement
}

type RankedTrending struct {
	TrendingCandidate
	Score float64
}

// RankTrending drops players who have not finished onboarding, scores the
// rest and returns the top results. Equal scores keep their input order.
func RankTrending(candidates []TrendingCandidate, now time.Time, w Weights) []RankedTrending {
	onboarded := ectolinq.Filter(candidates, func(c TrendingCandidate) bool {
		return c.Player.OnboardingCompleted
	})

	ranked := ectolinq.Map(onboarded, func(c TrendingCandidate) RankedTrending {
		return RankedTrending{
			TrendingCandidate: c,
			Score:             TrendingScore(c.Engagement, c.Player.HasVideo, now, w.Trending),
		}
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return truncate(ranked, w.Limits.ResultLimit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
