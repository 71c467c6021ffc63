package recruiting

import (
	"context"
	"time"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// TrendingPlayers returns onboarded players ranked by engagement momentum.
// The ranking is computed over the most viewed players and cached briefly.
func (s *Service) TrendingPlayers(ctx context.Context) (results []models.TrendingResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.TrendingPlayers")
	defer span.End()

	cacheResult := "miss"
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			tracing.Fail(span, err)
		}
		metrics.TrendingQueriesTotal.WithLabelValues(status, cacheResult).Inc()
	}()

	var cached []models.TrendingResult
	if s.cacheGet(ctx, trendingCacheKey, &cached) {
		cacheResult = "hit"
		return cached, nil
	}

	rows, err := s.stores.Engagement.ListMostViewed(ctx, s.cfg.Weights.Limits.CandidatePoolSize)
	if err != nil {
		return nil, s.unavailable(ctx, "engagement stats", err)
	}
	if len(rows) == 0 {
		return []models.TrendingResult{}, nil
	}

	ids := ectolinq.Map(rows, func(e models.Engagement) string { return e.PlayerID })
	players, err := s.stores.Players.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.unavailable(ctx, "players", err)
	}
	resolved, err := s.resolver.ResolveForPlayers(ctx, playerIDs(players))
	if err != nil {
		return nil, s.unavailable(ctx, "player metrics", err)
	}

	byID := make(map[string]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	start := time.Now()
	var candidates []scoring.TrendingCandidate
	for _, row := range rows {
		p, ok := byID[row.PlayerID]
		if !ok {
			continue
		}
		candidates = append(candidates, scoring.TrendingCandidate{Player: p, Engagement: row})
	}
	ranked := scoring.RankTrending(candidates, s.now(), s.cfg.Weights)
	metrics.ScoringDuration.WithLabelValues("trending").Observe(time.Since(start).Seconds())
	metrics.CandidatesScored.WithLabelValues("trending").Observe(float64(len(candidates)))

	results = make([]models.TrendingResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, models.TrendingResult{
			PlayerID:         r.Player.ID,
			FullName:         r.Player.DisplayName(),
			GradYear:         r.Player.GradYear,
			PrimaryPosition:  r.Player.PrimaryPosition,
			HighSchoolState:  r.Player.HighSchoolState,
			AvatarURL:        r.Player.AvatarURL,
			HasVideo:         r.Player.HasVideo,
			VerifiedMetrics:  r.Player.VerifiedMetrics,
			Metrics:          resolved[r.Player.ID],
			RecentViews7d:    r.Engagement.RecentViews7d,
			WatchlistAdds:    r.Engagement.WatchlistAddsCount,
			RecentUpdates30d: r.Engagement.RecentUpdates30d,
			TrendingScore:    r.Score,
		})
	}

	s.cacheSet(ctx, trendingCacheKey, results)
	return results, nil
}
