package measurement

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ParseFailure records a metric row whose kind was recognised but whose value
// carried no number.
type ParseFailure struct {
	PlayerID string
	MetricID string
	Kind     Kind
	Label    string
	Value    string
}

// Resolve folds metric rows into typed values per player. For each kind the
// first row of that kind wins, in row order, even when its value does not
// parse; the field is then left nil.
func Resolve(rows []models.PlayerMetric) (map[string]models.ResolvedMetrics, []ParseFailure) {
	resolved := make(map[string]models.ResolvedMetrics)
	claimed := make(map[string]map[Kind]bool)
	var failures []ParseFailure

	for _, row := range rows {
		kind := KindOf(row)
		if kind == KindOther {
			continue
		}
		if claimed[row.PlayerID] == nil {
			claimed[row.PlayerID] = make(map[Kind]bool, 3)
		}
		if claimed[row.PlayerID][kind] {
			continue
		}
		claimed[row.PlayerID][kind] = true

		value, ok := ParseValue(row.Value)
		if !ok {
			failures = append(failures, ParseFailure{
				PlayerID: row.PlayerID,
				MetricID: row.ID,
				Kind:     kind,
				Label:    row.Label,
				Value:    row.Value,
			})
			continue
		}

		r := resolved[row.PlayerID]
		switch kind {
		case KindThrowVelocity:
			r.ThrowVelo = &value
		case KindExitVelocity:
			r.ExitVelo = &value
		case KindSixtyTime:
			r.SixtyTime = &value
		}
		resolved[row.PlayerID] = r
	}

	return resolved, failures
}

// MetricSource loads metric rows for many players in one query.
type MetricSource interface {
	ListByPlayerIDs(ctx context.Context, playerIDs []string) ([]models.PlayerMetric, error)
}

// Resolver batch-loads and resolves metrics for a candidate set.
type Resolver struct {
	source MetricSource
	logger ectologger.Logger
}

func NewResolver(source MetricSource, logger ectologger.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger,
	}
}

// ResolveForPlayers issues a single fetch for all ids. Players without usable
// metrics are absent from the map; callers read the zero value.
func (r *Resolver) ResolveForPlayers(ctx context.Context, playerIDs []string) (map[string]models.ResolvedMetrics, error) {
	ctx, span := tracing.StartSpan(ctx, "measurement.Resolver.ResolveForPlayers")
	defer span.End()

	if len(playerIDs) == 0 {
		return map[string]models.ResolvedMetrics{}, nil
	}

	rows, err := r.source.ListByPlayerIDs(ctx, playerIDs)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	resolved, failures := Resolve(rows)
	for _, f := range failures {
		metrics.MetricParseFailures.WithLabelValues(string(f.Kind)).Inc()
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"player_id":    f.PlayerID,
			"metric_id":    f.MetricID,
			"metric_kind":  f.Kind,
			"metric_label": f.Label,
			"metric_value": f.Value,
		}).Warn("Metric value is not numeric, treating as absent")
	}

	return resolved, nil
}
