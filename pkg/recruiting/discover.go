package recruiting

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/clover/pkg/measurement"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// RecruitsByState lists onboarded players from one state as discovery cards.
func (s *Service) RecruitsByState(ctx context.Context, state string, filters models.RecruitFilters) ([]models.StatePlayerSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.RecruitsByState")
	defer span.End()

	state = strings.ToUpper(strings.TrimSpace(state))
	if len(state) != 2 {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "state must be a two letter code, got %q", state)
	}

	players, err := s.stores.Players.List(ctx, models.PlayerQuery{
		OnboardedOnly: true,
		States:        []string{state},
		GradYears:     filters.GradYears,
		Positions:     normalizeCodes(filters.Positions),
		Bats:          filters.Bats,
		Throws:        filters.Throws,
		Limit:         s.cfg.Weights.Limits.CandidatePoolSize,
	})
	if err != nil {
		tracing.Fail(span, err)
		return nil, s.unavailable(ctx, "players", err)
	}
	if len(players) == 0 {
		return []models.StatePlayerSummary{}, nil
	}

	ids := playerIDs(players)
	rows, err := s.stores.Metrics.ListByPlayerIDs(ctx, ids)
	if err != nil {
		tracing.Fail(span, err)
		return nil, s.unavailable(ctx, "player metrics", err)
	}
	metricsByPlayer := make(map[string][]models.PlayerMetric, len(players))
	for _, row := range rows {
		metricsByPlayer[row.PlayerID] = append(metricsByPlayer[row.PlayerID], row)
	}

	// trending flags are decoration; the cards are still useful without them
	views := make(map[string]int, len(players))
	engagement, err := s.stores.Engagement.ListByPlayerIDs(ctx, ids)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("state", state).Warn("Engagement lookup failed, trending flags omitted")
	}
	for _, e := range engagement {
		views[e.PlayerID] = e.RecentViews7d
	}

	limits := s.cfg.Weights.Limits
	summaries := make([]models.StatePlayerSummary, 0, len(players))
	for _, p := range players {
		summary := models.StatePlayerSummary{
			ID:                p.ID,
			Name:              p.DisplayName(),
			AvatarURL:         p.AvatarURL,
			GradYear:          p.GradYear,
			State:             state,
			PrimaryPosition:   p.PrimaryPosition,
			SecondaryPosition: p.SecondaryPosition,
			Height:            p.HeightLabel(),
			Weight:            p.WeightLbs,
			Metrics:           []string{},
			Trending:          views[p.ID] > limits.TrendingViewThreshold,
		}
		if p.HighSchoolState != nil && *p.HighSchoolState != "" {
			summary.State = *p.HighSchoolState
		}
		if len(p.TopSchools) > 0 {
			top := p.TopSchools[0]
			summary.TopSchool = &top
		}

		for _, m := range metricsByPlayer[p.ID] {
			if len(summary.Metrics) < limits.DiscoverMetricLimit {
				summary.Metrics = append(summary.Metrics, fmt.Sprintf("%s: %s", m.Label, m.Value))
			}
			if m.VerifiedDate != nil {
				summary.Verified = true
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// StateRecruitCounts totals onboarded players per state, and per grad year
// within each state.
func (s *Service) StateRecruitCounts(ctx context.Context) (map[string]models.StateRecruitCount, error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.StateRecruitCounts")
	defer span.End()

	var cached map[string]models.StateRecruitCount
	if s.cacheGet(ctx, stateCountsCacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.stores.Players.CountByStateAndYear(ctx)
	if err != nil {
		tracing.Fail(span, err)
		return nil, s.unavailable(ctx, "state counts", err)
	}

	counts := make(map[string]models.StateRecruitCount)
	for _, row := range rows {
		if row.State == "" {
			continue
		}
		c, ok := counts[row.State]
		if !ok {
			c = models.StateRecruitCount{ByYear: map[int]int{}}
		}
		c.Total += row.Count
		if row.GradYear != nil {
			c.ByYear[*row.GradYear] += row.Count
		}
		counts[row.State] = c
	}

	s.cacheSet(ctx, stateCountsCacheKey, counts)
	return counts, nil
}

// RecordMetric stores a measurement for a player along with its classified
// kind. Values that carry no number are kept as entered.
func (s *Service) RecordMetric(ctx context.Context, playerID string, req models.RecordMetricRequest) (*models.PlayerMetric, error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.RecordMetric")
	defer span.End()

	players, err := s.stores.Players.GetByIDs(ctx, []string{playerID})
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	if len(players) == 0 {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "player %s does not exist", playerID)
	}

	m := measurement.Measure(strings.TrimSpace(req.Label), strings.TrimSpace(req.Value))
	if m.Label == "" || m.Raw == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "metric_label and metric_value are required")
	}
	kind := string(m.Kind)

	metric := &models.PlayerMetric{
		PlayerID:     playerID,
		Label:        m.Label,
		Value:        m.Raw,
		Kind:         &kind,
		VerifiedDate: req.VerifiedDate,
		CreatedAt:    s.now().UTC(),
	}

	if m.Kind != measurement.KindOther && m.Value == nil {
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"player_id": playerID,
			"label":     m.Label,
			"value":     m.Raw,
			"kind":      m.Kind,
		}).Warn("Recorded metric value has no number and will not be scored")
	}

	if err := s.stores.Metrics.Create(ctx, metric); err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	return metric, nil
}
