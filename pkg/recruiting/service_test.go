package recruiting

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/measurement"
	"github.com/Ramsey-B/clover/pkg/models"
)

var errDown = errors.New("connection refused")

type fakePlayers struct {
	players   []models.Player
	counts    []models.StateGradYearCount
	lastQuery models.PlayerQuery
	err       error
}

func (f *fakePlayers) List(_ context.Context, q models.PlayerQuery) ([]models.Player, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Player
	for _, p := range f.players {
		if q.OnboardedOnly && !p.OnboardingCompleted {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakePlayers) GetByIDs(_ context.Context, ids []string) ([]models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Player
	for _, p := range f.players {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePlayers) CountByStateAndYear(_ context.Context) ([]models.StateGradYearCount, error) {
	return f.counts, f.err
}

type fakeMetrics struct {
	rows    []models.PlayerMetric
	created []models.PlayerMetric
	err     error
}

func (f *fakeMetrics) ListByPlayerIDs(_ context.Context, ids []string) ([]models.PlayerMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.PlayerMetric
	for _, r := range f.rows {
		for _, id := range ids {
			if r.PlayerID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeMetrics) Create(_ context.Context, m *models.PlayerMetric) error {
	f.created = append(f.created, *m)
	return nil
}

type fakeEngagement struct {
	rows []models.Engagement
	err  error
}

func (f *fakeEngagement) ListMostViewed(_ context.Context, limit int) ([]models.Engagement, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeEngagement) ListByPlayerIDs(_ context.Context, _ []string) ([]models.Engagement, error) {
	return f.rows, f.err
}

type fakeCoaches struct {
	coach        *models.Coach
	err          error
	mirrored     []string
	mirrorCalled bool
	mirrorErr    error
}

func (f *fakeCoaches) Get(_ context.Context, id string) (*models.Coach, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.coach == nil || f.coach.ID != id {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "coach %s does not exist", id)
	}
	return f.coach, nil
}

func (f *fakeCoaches) UpdateRecruitingNeeds(_ context.Context, _ string, positions []string) error {
	f.mirrorCalled = true
	f.mirrored = positions
	return f.mirrorErr
}

type fakeNeeds struct {
	needs    *models.ProgramNeeds
	err      error
	upserted *models.ProgramNeeds
}

func (f *fakeNeeds) Get(_ context.Context, _ string) (*models.ProgramNeeds, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.needs == nil {
		return nil, nil
	}
	cp := *f.needs
	return &cp, nil
}

func (f *fakeNeeds) Upsert(_ context.Context, n *models.ProgramNeeds) error {
	f.upserted = n
	return nil
}

type mapCache struct {
	values map[string]any
}

func (m *mapCache) Get(_ context.Context, key string, dest any) bool {
	v, ok := m.values[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *[]models.TrendingResult:
		*d = v.([]models.TrendingResult)
	case *map[string]models.StateRecruitCount:
		*d = v.(map[string]models.StateRecruitCount)
	default:
		return false
	}
	return true
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	m.values[key] = value
}

func (m *mapCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(m.values, k)
	}
}

type fixture struct {
	players    *fakePlayers
	metrics    *fakeMetrics
	engagement *fakeEngagement
	coaches    *fakeCoaches
	needs      *fakeNeeds
	cache      *mapCache
	svc        *Service
}

var fixedNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		players:    &fakePlayers{},
		metrics:    &fakeMetrics{},
		engagement: &fakeEngagement{},
		coaches:    &fakeCoaches{coach: &models.Coach{ID: "coach-1", SchoolName: models.Ptr("Rice University")}},
		needs:      &fakeNeeds{},
		cache:      &mapCache{values: map[string]any{}},
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	resolver := measurement.NewResolver(f.metrics, logger)

	f.svc = NewService(Stores{
		Players:      f.players,
		Metrics:      f.metrics,
		Engagement:   f.engagement,
		Coaches:      f.coaches,
		ProgramNeeds: f.needs,
	}, resolver, f.cache, DefaultConfig(), logger)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func onboarded(id, primary, state string) models.Player {
	return models.Player{
		ID:                  id,
		FullName:            models.Ptr("Player " + id),
		GradYear:            models.Ptr(2027),
		PrimaryPosition:     models.Ptr(primary),
		HighSchoolState:     models.Ptr(state),
		OnboardingCompleted: true,
	}
}

func metric(playerID, label, value string) models.PlayerMetric {
	return models.PlayerMetric{ID: playerID + label, PlayerID: playerID, Label: label, Value: value}
}

func TestFindCandidates_ScoresAgainstProgramNeeds(t *testing.T) {
	f := newFixture()
	f.needs.needs = &models.ProgramNeeds{
		CoachID:     "coach-1",
		GradYears:   pq.Int64Array{2027},
		Positions:   pq.StringArray{"SS"},
		MinExitVelo: models.Ptr(90.0),
	}
	f.players.players = []models.Player{onboarded("a", "C", "CA"), onboarded("b", "SS", "TX")}
	f.metrics.rows = []models.PlayerMetric{metric("b", "Exit Velo", "95")}

	results, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "b", results[0].PlayerID)
	assert.Equal(t, 45, results[0].MatchScore)
	assert.Equal(t, []string{"SS", "95mph exit velo"}, results[0].MatchReasons)
	assert.Equal(t, 0, results[1].MatchScore)
	assert.Equal(t, []string{}, results[1].MatchReasons)

	q := f.players.lastQuery
	assert.True(t, q.OnboardedOnly)
	assert.True(t, q.HasGradYear)
	assert.Equal(t, []int64{2027}, q.GradYears)
	assert.Equal(t, []string{"SS"}, q.Positions)
	assert.Equal(t, 100, q.Limit)
}

func TestFindCandidates_LegacyNeedsFallback(t *testing.T) {
	f := newFixture()
	f.coaches.coach.RecruitingNeeds = pq.StringArray{"RHP"}

	_, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
	require.NoError(t, err)

	q := f.players.lastQuery
	assert.Equal(t, []int64{2026, 2027, 2028}, q.GradYears)
	assert.Equal(t, []string{"RHP"}, q.Positions)
}

func TestFindCandidates_NeedsLookupFailureFallsBack(t *testing.T) {
	f := newFixture()
	f.needs.err = errDown
	f.coaches.err = errDown
	f.players.players = []models.Player{onboarded("a", "SS", "TX")}

	results, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, f.players.lastQuery.Positions)
}

func TestFindCandidates_RequestFiltersOverrideNeeds(t *testing.T) {
	f := newFixture()
	f.needs.needs = &models.ProgramNeeds{GradYears: pq.Int64Array{2027}, Positions: pq.StringArray{"SS"}}

	_, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{
		GradYears: []int64{2029},
		Positions: []string{"c"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2029}, f.players.lastQuery.GradYears)
	assert.Equal(t, []string{"C"}, f.players.lastQuery.Positions)
}

func TestFindCandidates_TopTwentyFromPoolOfHundred(t *testing.T) {
	f := newFixture()
	f.needs.needs = &models.ProgramNeeds{PreferredRegions: pq.StringArray{"TX"}}
	for i := 0; i < 150; i++ {
		f.players.players = append(f.players.players, onboarded(string(rune('A'+i%26))+string(rune('a'+i/26)), "SS", "TX"))
	}

	results, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
	require.NoError(t, err)
	assert.Len(t, results, 20)
}

func TestFindCandidates_FetchFailuresAreTyped(t *testing.T) {
	t.Run("players", func(t *testing.T) {
		f := newFixture()
		f.players.err = errDown

		results, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
		assert.Nil(t, results)
		require.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, httperror.GetStatusCode(err))
	})

	t.Run("metrics", func(t *testing.T) {
		f := newFixture()
		f.players.players = []models.Player{onboarded("a", "SS", "TX")}
		f.metrics.err = errDown

		results, err := f.svc.FindCandidates(context.Background(), "coach-1", models.RecruitFilters{})
		assert.Nil(t, results)
		require.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, httperror.GetStatusCode(err))
	})
}

func TestTrendingPlayers(t *testing.T) {
	recent := fixedNow.Add(-24 * time.Hour)

	t.Run("ranks by score and skips players who have not onboarded", func(t *testing.T) {
		f := newFixture()
		hidden := onboarded("hidden", "SS", "TX")
		hidden.OnboardingCompleted = false
		video := onboarded("video", "C", "TX")
		video.HasVideo = true
		f.players.players = []models.Player{onboarded("plain", "SS", "TX"), video, hidden}
		f.engagement.rows = []models.Engagement{
			{PlayerID: "hidden", RecentViews7d: 500},
			{PlayerID: "plain", RecentViews7d: 4, LastActivityAt: &recent},
			{PlayerID: "video", RecentViews7d: 4, LastActivityAt: &recent},
			{PlayerID: "deleted", RecentViews7d: 3},
		}

		results, err := f.svc.TrendingPlayers(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "video", results[0].PlayerID)
		assert.Equal(t, 10.0, results[0].TrendingScore-results[1].TrendingScore)
		// 4*1.5 + (14-1)*2
		assert.Equal(t, 32.0, results[1].TrendingScore)
	})

	t.Run("serves repeat requests from cache", func(t *testing.T) {
		f := newFixture()
		f.players.players = []models.Player{onboarded("plain", "SS", "TX")}
		f.engagement.rows = []models.Engagement{{PlayerID: "plain", RecentViews7d: 2}}

		first, err := f.svc.TrendingPlayers(context.Background())
		require.NoError(t, err)

		f.engagement.err = errDown
		second, err := f.svc.TrendingPlayers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("engagement failure is typed", func(t *testing.T) {
		f := newFixture()
		f.engagement.err = errDown

		_, err := f.svc.TrendingPlayers(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, httperror.GetStatusCode(err))
	})
}

func TestUpdateProgramNeeds(t *testing.T) {
	t.Run("upserts and mirrors positions", func(t *testing.T) {
		f := newFixture()

		needs, err := f.svc.UpdateProgramNeeds(context.Background(), "coach-1", models.UpdateProgramNeedsRequest{
			GradYears:        []int64{2027, 2028},
			Positions:        []string{"ss", " C ", "SS"},
			PreferredRegions: []string{"tx"},
			MinExitVelo:      models.Ptr(88.0),
		})
		require.NoError(t, err)
		require.NotNil(t, f.needs.upserted)
		assert.Equal(t, pq.StringArray{"SS", "C"}, needs.Positions)
		assert.Equal(t, pq.StringArray{"TX"}, needs.PreferredRegions)
		assert.Equal(t, models.NeedsSourceProgram, needs.Source)
		assert.Equal(t, fixedNow, needs.UpdatedAt)
		assert.True(t, f.coaches.mirrorCalled)
		assert.Equal(t, []string{"SS", "C"}, f.coaches.mirrored)
	})

	t.Run("mirror failure does not fail the update", func(t *testing.T) {
		f := newFixture()
		f.coaches.mirrorErr = errDown

		_, err := f.svc.UpdateProgramNeeds(context.Background(), "coach-1", models.UpdateProgramNeedsRequest{Positions: []string{"SS"}})
		assert.NoError(t, err)
	})

	t.Run("inverted height range is rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.UpdateProgramNeeds(context.Background(), "coach-1", models.UpdateProgramNeedsRequest{
			MinHeightInches: models.Ptr(76),
			MaxHeightInches: models.Ptr(70),
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
		assert.Nil(t, f.needs.upserted)
	})
}

func TestGetProgramNeeds(t *testing.T) {
	t.Run("stored needs win", func(t *testing.T) {
		f := newFixture()
		f.needs.needs = &models.ProgramNeeds{CoachID: "coach-1", Positions: pq.StringArray{"LHP"}}

		needs, err := f.svc.GetProgramNeeds(context.Background(), "coach-1")
		require.NoError(t, err)
		assert.Equal(t, models.NeedsSourceProgram, needs.Source)
		assert.Equal(t, pq.StringArray{"LHP"}, needs.Positions)
	})

	t.Run("unknown coach gets an unrestricted default", func(t *testing.T) {
		f := newFixture()

		needs, err := f.svc.GetProgramNeeds(context.Background(), "someone-else")
		require.NoError(t, err)
		assert.Equal(t, models.NeedsSourceDefault, needs.Source)
		assert.Empty(t, needs.Positions)
		assert.Empty(t, needs.GradYears)
	})
}

func TestRecruitsByState(t *testing.T) {
	f := newFixture()
	p := onboarded("a", "SS", "TX")
	p.HeightFeet = models.Ptr(6)
	p.HeightInches = models.Ptr(1)
	p.TopSchools = pq.StringArray{"Baylor", "TCU"}
	f.players.players = []models.Player{p, onboarded("b", "C", "TX")}

	verified := fixedNow.Add(-48 * time.Hour)
	for _, label := range []string{"60 yd", "Exit Velo", "FB Velo", "Pop Time", "Vertical", "Broad Jump"} {
		f.metrics.rows = append(f.metrics.rows, metric("a", label, "1"))
	}
	f.metrics.rows[5].VerifiedDate = &verified
	f.engagement.rows = []models.Engagement{{PlayerID: "a", RecentViews7d: 11}, {PlayerID: "b", RecentViews7d: 10}}

	cards, err := f.svc.RecruitsByState(context.Background(), "tx", models.RecruitFilters{Bats: "R"})
	require.NoError(t, err)
	require.Len(t, cards, 2)

	a := cards[0]
	assert.Equal(t, "TX", a.State)
	assert.Len(t, a.Metrics, 5)
	assert.Equal(t, "60 yd: 1", a.Metrics[0])
	assert.True(t, a.Verified)
	assert.True(t, a.Trending)
	assert.Equal(t, "Baylor", models.Deref(a.TopSchool))
	assert.Equal(t, `6'1"`, models.Deref(a.Height))

	b := cards[1]
	assert.False(t, b.Trending)
	assert.False(t, b.Verified)
	assert.Empty(t, b.Metrics)
	assert.Nil(t, b.TopSchool)

	assert.Equal(t, []string{"TX"}, f.players.lastQuery.States)
	assert.Equal(t, "R", f.players.lastQuery.Bats)
}

func TestRecruitsByState_InvalidState(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RecruitsByState(context.Background(), "Texas", models.RecruitFilters{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestStateRecruitCounts(t *testing.T) {
	f := newFixture()
	f.players.counts = []models.StateGradYearCount{
		{State: "TX", GradYear: models.Ptr(2026), Count: 3},
		{State: "TX", GradYear: models.Ptr(2027), Count: 2},
		{State: "TX", GradYear: nil, Count: 1},
		{State: "OK", GradYear: models.Ptr(2027), Count: 4},
	}

	counts, err := f.svc.StateRecruitCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StateRecruitCount{Total: 6, ByYear: map[int]int{2026: 3, 2027: 2}}, counts["TX"])
	assert.Equal(t, models.StateRecruitCount{Total: 4, ByYear: map[int]int{2027: 4}}, counts["OK"])
	assert.Contains(t, f.cache.values, stateCountsCacheKey)
}

func TestRecordMetric(t *testing.T) {
	t.Run("stores the classified kind", func(t *testing.T) {
		f := newFixture()
		f.players.players = []models.Player{onboarded("a", "SS", "TX")}

		m, err := f.svc.RecordMetric(context.Background(), "a", models.RecordMetricRequest{Label: " Exit Velocity ", Value: "92 mph"})
		require.NoError(t, err)
		assert.Equal(t, "Exit Velocity", m.Label)
		assert.Equal(t, string(measurement.KindExitVelocity), models.Deref(m.Kind))
		require.Len(t, f.metrics.created, 1)
	})

	t.Run("keeps unparseable values", func(t *testing.T) {
		f := newFixture()
		f.players.players = []models.Player{onboarded("a", "SS", "TX")}

		m, err := f.svc.RecordMetric(context.Background(), "a", models.RecordMetricRequest{Label: "60 yard", Value: "N/A"})
		require.NoError(t, err)
		assert.Equal(t, "N/A", m.Value)
		assert.Equal(t, string(measurement.KindSixtyTime), models.Deref(m.Kind))
	})

	t.Run("unknown player", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.RecordMetric(context.Background(), "ghost", models.RecordMetricRequest{Label: "Exit Velo", Value: "90"})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}
