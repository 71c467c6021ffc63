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

// candidateQuery builds the player fetch for a coach's needs. Request
// filters, when given, replace the needs-derived grad years and positions.
func (s *Service) candidateQuery(needs models.ProgramNeeds, filters models.RecruitFilters) models.PlayerQuery {
	q := models.PlayerQuery{
		OnboardedOnly: true,
		HasGradYear:   true,
		GradYears:     needs.GradYears,
		Positions:     needs.Positions,
		States:        needs.PreferredRegions,
		Bats:          filters.Bats,
		Throws:        filters.Throws,
		Limit:         s.cfg.Weights.Limits.CandidatePoolSize,
	}
	if len(filters.GradYears) > 0 {
		q.GradYears = filters.GradYears
	}
	if len(filters.Positions) > 0 {
		q.Positions = normalizeCodes(filters.Positions)
	}
	return q
}

// FindCandidates ranks players against the coach's program needs and returns
// the best fits, highest score first.
func (s *Service) FindCandidates(ctx context.Context, coachID string, filters models.RecruitFilters) (results []models.MatchResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.FindCandidates")
	defer span.End()

	coach := s.lookupCoach(ctx, coachID)
	needs := s.resolveNeeds(ctx, coachID, coach)
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			tracing.Fail(span, err)
		}
		metrics.CandidateQueriesTotal.WithLabelValues(status, string(needs.Source)).Inc()
	}()

	programLabel := ""
	if coach != nil {
		programLabel = coach.ProgramLabel()
	}

	players, err := s.stores.Players.List(ctx, s.candidateQuery(needs, filters))
	if err != nil {
		return nil, s.unavailable(ctx, "players", err)
	}
	if len(players) == 0 {
		return []models.MatchResult{}, nil
	}

	resolved, err := s.resolver.ResolveForPlayers(ctx, playerIDs(players))
	if err != nil {
		return nil, s.unavailable(ctx, "player metrics", err)
	}

	start := time.Now()
	candidates := ectolinq.Map(players, func(p models.Player) scoring.MatchCandidate {
		return scoring.MatchCandidate{Player: p, Metrics: resolved[p.ID]}
	})
	ranked := scoring.RankMatches(candidates, needs, programLabel, s.cfg.Weights)
	metrics.ScoringDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())
	metrics.CandidatesScored.WithLabelValues("match").Observe(float64(len(candidates)))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"coach_id":     coachID,
		"needs_source": needs.Source,
		"fetched":      len(players),
		"returned":     len(ranked),
	}).Debug("Ranked candidates")

	return ectolinq.Map(ranked, toMatchResult), nil
}

func toMatchResult(r scoring.RankedMatch) models.MatchResult {
	p := r.Player
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	topSchools := []string(p.TopSchools)
	if topSchools == nil {
		topSchools = []string{}
	}

	return models.MatchResult{
		PlayerID:          p.ID,
		FullName:          p.DisplayName(),
		GradYear:          p.GradYear,
		PrimaryPosition:   p.PrimaryPosition,
		SecondaryPosition: p.SecondaryPosition,
		HighSchoolState:   p.HighSchoolState,
		HighSchoolName:    p.HighSchoolName,
		HeightFeet:        p.HeightFeet,
		HeightInches:      p.HeightInches,
		WeightLbs:         p.WeightLbs,
		AvatarURL:         p.AvatarURL,
		TopSchools:        topSchools,
		Metrics:           r.Metrics,
		MatchScore:        r.Score,
		MatchReasons:      reasons,
	}
}
