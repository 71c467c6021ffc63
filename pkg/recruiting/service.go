// Package recruiting answers a coach's discovery questions: which players fit
// the program, which players are trending and who is recruitable in a state.
// It fetches in batches, resolves metrics once per request and hands the
// ranking to the scoring package.
package recruiting

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/scoring"
)

type PlayerStore interface {
	List(ctx context.Context, q models.PlayerQuery) ([]models.Player, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Player, error)
	CountByStateAndYear(ctx context.Context) ([]models.StateGradYearCount, error)
}

type MetricStore interface {
	ListByPlayerIDs(ctx context.Context, playerIDs []string) ([]models.PlayerMetric, error)
	Create(ctx context.Context, metric *models.PlayerMetric) error
}

type EngagementStore interface {
	ListMostViewed(ctx context.Context, limit int) ([]models.Engagement, error)
	ListByPlayerIDs(ctx context.Context, playerIDs []string) ([]models.Engagement, error)
}

type CoachStore interface {
	Get(ctx context.Context, id string) (*models.Coach, error)
	UpdateRecruitingNeeds(ctx context.Context, id string, positions []string) error
}

// ProgramNeedsStore returns nil needs with no error when a coach has none.
type ProgramNeedsStore interface {
	Get(ctx context.Context, coachID string) (*models.ProgramNeeds, error)
	Upsert(ctx context.Context, needs *models.ProgramNeeds) error
}

type MetricsResolver interface {
	ResolveForPlayers(ctx context.Context, playerIDs []string) (map[string]models.ResolvedMetrics, error)
}

// Cache holds computed lists for a short time. Misses and failures both
// report false.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// Stores groups the data sources the service reads.
type Stores struct {
	Players      PlayerStore
	Metrics      MetricStore
	Engagement   EngagementStore
	Coaches      CoachStore
	ProgramNeeds ProgramNeedsStore
}

type Config struct {
	Weights scoring.Weights
	// LegacyNeedsYears is how many grad years, starting with the current
	// one, a coach with only legacy recruiting needs is matched against.
	LegacyNeedsYears int
	CacheTTL         time.Duration
}

func DefaultConfig() Config {
	return Config{
		Weights:          scoring.DefaultWeights(),
		LegacyNeedsYears: 3,
		CacheTTL:         5 * time.Minute,
	}
}

const (
	trendingCacheKey    = "trending"
	stateCountsCacheKey = "state-counts"
)

type Service struct {
	stores   Stores
	resolver MetricsResolver
	cache    Cache
	cfg      Config
	logger   ectologger.Logger
	now      func() time.Time
}

// NewService creates the recruiting service. cache may be nil.
func NewService(stores Stores, resolver MetricsResolver, cache Cache, cfg Config, logger ectologger.Logger) *Service {
	return &Service{
		stores:   stores,
		resolver: resolver,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// unavailable is the single failure a read returns when a source it depends
// on could not be fetched. The cause is logged, not returned.
func (s *Service) unavailable(ctx context.Context, what string, err error) error {
	s.logger.WithContext(ctx).WithError(err).WithField("source", what).Error("Recruiting data source unavailable")
	return httperror.NewHTTPErrorf(http.StatusServiceUnavailable, "%s are unavailable, try again shortly", what)
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	s.cache.Set(ctx, key, value, s.cfg.CacheTTL)
}

func playerIDs(players []models.Player) []string {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}
