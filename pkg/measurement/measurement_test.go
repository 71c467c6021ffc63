package measurement

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"Exit Velocity", KindExitVelocity},
		{"Exit Velo", KindExitVelocity},
		{"exit speed", KindExitVelocity},
		{"FB Velo", KindThrowVelocity},
		{"Fastball Velocity", KindThrowVelocity},
		{"Throwing velo (IF)", KindThrowVelocity},
		{"60 Yard Dash", KindSixtyTime},
		{"Sixty time", KindSixtyTime},
		{"Exit Velocity (FB)", KindExitVelocity},
		{"EV Max", KindOther},
		{"Level", KindOther},
		{"Pop Time", KindOther},
		{"GPA", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestKindOf_PrefersStoredKind(t *testing.T) {
	stored := string(KindSixtyTime)
	row := models.PlayerMetric{Label: "Dash", Value: "6.7", Kind: &stored}
	assert.Equal(t, KindSixtyTime, KindOf(row))

	bogus := "speed"
	row = models.PlayerMetric{Label: "Exit Velo", Value: "90", Kind: &bogus}
	assert.Equal(t, KindExitVelocity, KindOf(row), "unknown stored kinds fall back to the label")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"92", 92, true},
		{"92.5", 92.5, true},
		{" 88 mph", 88, true},
		{"6.72s", 6.72, true},
		{".5", 0.5, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"mph 90", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseValue(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMeasure(t *testing.T) {
	m := Measure("Exit Velocity", "95")
	assert.Equal(t, KindExitVelocity, m.Kind)
	require.NotNil(t, m.Value)
	assert.Equal(t, 95.0, *m.Value)

	m = Measure("Exit Velocity", "N/A")
	assert.Nil(t, m.Value)
}

func TestResolve(t *testing.T) {
	t.Run("exit velocity never resolves as throwing velocity", func(t *testing.T) {
		resolved, failures := Resolve([]models.PlayerMetric{
			{PlayerID: "p1", Label: "Exit Velocity", Value: "92"},
		})
		assert.Empty(t, failures)
		require.NotNil(t, resolved["p1"].ExitVelo)
		assert.Equal(t, 92.0, *resolved["p1"].ExitVelo)
		assert.Nil(t, resolved["p1"].ThrowVelo)
	})

	t.Run("first row of each kind wins", func(t *testing.T) {
		resolved, _ := Resolve([]models.PlayerMetric{
			{PlayerID: "p1", Label: "FB Velo", Value: "88"},
			{PlayerID: "p1", Label: "Fastball Velocity", Value: "91"},
			{PlayerID: "p1", Label: "60 yd", Value: "6.9"},
			{PlayerID: "p1", Label: "Sixty", Value: "6.5"},
		})
		assert.Equal(t, 88.0, *resolved["p1"].ThrowVelo)
		assert.Equal(t, 6.9, *resolved["p1"].SixtyTime)
	})

	t.Run("unparseable first row leaves the field nil", func(t *testing.T) {
		resolved, failures := Resolve([]models.PlayerMetric{
			{ID: "m1", PlayerID: "p1", Label: "Exit Velo", Value: "N/A"},
			{ID: "m2", PlayerID: "p1", Label: "Exit Velo (retest)", Value: "94"},
		})
		assert.Nil(t, resolved["p1"].ExitVelo)
		require.Len(t, failures, 1)
		assert.Equal(t, "m1", failures[0].MetricID)
		assert.Equal(t, KindExitVelocity, failures[0].Kind)
	})

	t.Run("rows are grouped by player", func(t *testing.T) {
		resolved, _ := Resolve([]models.PlayerMetric{
			{PlayerID: "p1", Label: "FB Velo", Value: "90"},
			{PlayerID: "p2", Label: "FB Velo", Value: "84"},
			{PlayerID: "p3", Label: "GPA", Value: "3.9"},
		})
		assert.Equal(t, 90.0, *resolved["p1"].ThrowVelo)
		assert.Equal(t, 84.0, *resolved["p2"].ThrowVelo)
		_, ok := resolved["p3"]
		assert.False(t, ok)
	})
}

type fakeMetricSource struct {
	rows  []models.PlayerMetric
	err   error
	calls int
	ids   []string
}

func (f *fakeMetricSource) ListByPlayerIDs(_ context.Context, ids []string) ([]models.PlayerMetric, error) {
	f.calls++
	f.ids = ids
	return f.rows, f.err
}

func TestResolver_ResolveForPlayers(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	t.Run("single batched fetch", func(t *testing.T) {
		source := &fakeMetricSource{rows: []models.PlayerMetric{
			{PlayerID: "p1", Label: "Exit Velo", Value: "95"},
			{PlayerID: "p2", Label: "FB Velo", Value: "not recorded"},
		}}
		r := NewResolver(source, logger)

		resolved, err := r.ResolveForPlayers(context.Background(), []string{"p1", "p2"})
		require.NoError(t, err)
		assert.Equal(t, 1, source.calls)
		assert.Equal(t, []string{"p1", "p2"}, source.ids)
		assert.Equal(t, 95.0, *resolved["p1"].ExitVelo)
		assert.Nil(t, resolved["p2"].ThrowVelo)
	})

	t.Run("no ids skips the fetch", func(t *testing.T) {
		source := &fakeMetricSource{}
		resolved, err := NewResolver(source, logger).ResolveForPlayers(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, resolved)
		assert.Zero(t, source.calls)
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		source := &fakeMetricSource{err: errors.New("connection reset")}
		_, err := NewResolver(source, logger).ResolveForPlayers(context.Background(), []string{"p1"})
		assert.Error(t, err)
	})
}
