package scoring

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func player(primary, secondary, state string) models.Player {
	p := models.Player{ID: "p-" + primary + secondary, OnboardingCompleted: true}
	if primary != "" {
		p.PrimaryPosition = models.Ptr(primary)
	}
	if secondary != "" {
		p.SecondaryPosition = models.Ptr(secondary)
	}
	if state != "" {
		p.HighSchoolState = models.Ptr(state)
	}
	return p
}

func TestMatch_ShortstopWithExitVelo(t *testing.T) {
	needs := models.ProgramNeeds{
		Positions:   pq.StringArray{"SS"},
		MinExitVelo: models.Ptr(90.0),
	}
	metrics := models.ResolvedMetrics{ExitVelo: models.Ptr(95.0)}

	got := Match(needs, player("SS", "", "TX"), metrics, "", DefaultWeights().Match)

	assert.Equal(t, 45, got.Score)
	if diff := cmp.Diff([]string{"SS", "95mph exit velo"}, got.Reasons); diff != "" {
		t.Errorf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_Rules(t *testing.T) {
	w := DefaultWeights().Match

	tests := []struct {
		name        string
		needs       models.ProgramNeeds
		player      models.Player
		metrics     models.ResolvedMetrics
		program     string
		wantScore   int
		wantReasons []string
	}{
		{
			name:        "secondary position only",
			needs:       models.ProgramNeeds{Positions: pq.StringArray{"C"}},
			player:      player("1B", "C", ""),
			wantScore:   15,
			wantReasons: []string{"C (secondary)"},
		},
		{
			name:        "primary wins over secondary",
			needs:       models.ProgramNeeds{Positions: pq.StringArray{"SS", "2B"}},
			player:      player("SS", "2B", ""),
			wantScore:   30,
			wantReasons: []string{"SS"},
		},
		{
			name:        "preferred region",
			needs:       models.ProgramNeeds{PreferredRegions: pq.StringArray{"TX", "OK"}},
			player:      player("", "", "OK"),
			wantScore:   20,
			wantReasons: []string{"Preferred region"},
		},
		{
			name:        "throwing velocity at threshold",
			needs:       models.ProgramNeeds{MinPitchVelo: models.Ptr(88.0)},
			player:      player("RHP", "", ""),
			metrics:     models.ResolvedMetrics{ThrowVelo: models.Ptr(88.0)},
			wantScore:   20,
			wantReasons: []string{"88mph FB"},
		},
		{
			name:        "throwing velocity below threshold",
			needs:       models.ProgramNeeds{MinPitchVelo: models.Ptr(88.0)},
			player:      player("RHP", "", ""),
			metrics:     models.ResolvedMetrics{ThrowVelo: models.Ptr(87.5)},
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name:        "sixty time formats decimals",
			needs:       models.ProgramNeeds{MaxSixtyTime: models.Ptr(7.0)},
			player:      player("CF", "", ""),
			metrics:     models.ResolvedMetrics{SixtyTime: models.Ptr(6.65)},
			wantScore:   10,
			wantReasons: []string{"6.65s 60-yard"},
		},
		{
			name:      "zero sixty time never qualifies",
			needs:     models.ProgramNeeds{MaxSixtyTime: models.Ptr(7.0)},
			player:    player("CF", "", ""),
			metrics:   models.ResolvedMetrics{SixtyTime: models.Ptr(0.0)},
			wantScore: 0,
		},
		{
			name:      "missing metric earns nothing",
			needs:     models.ProgramNeeds{MinExitVelo: models.Ptr(85.0)},
			player:    player("3B", "", ""),
			wantScore: 0,
		},
		{
			name: "height inside both bounds",
			needs: models.ProgramNeeds{
				MinHeightInches: models.Ptr(70),
				MaxHeightInches: models.Ptr(76),
			},
			player: func() models.Player {
				p := player("C", "", "")
				p.HeightFeet = models.Ptr(6)
				p.HeightInches = models.Ptr(1)
				return p
			}(),
			wantScore: 10,
		},
		{
			name:      "unknown height earns no height points",
			needs:     models.ProgramNeeds{MaxHeightInches: models.Ptr(76)},
			player:    player("C", "", ""),
			wantScore: 0,
		},
		{
			name:  "top schools names the program",
			needs: models.ProgramNeeds{},
			player: func() models.Player {
				p := player("SS", "", "")
				p.TopSchools = pq.StringArray{"Rice", "University of Texas"}
				return p
			}(),
			program:     "texas",
			wantScore:   10,
			wantReasons: []string{"Interested in your program"},
		},
		{
			name:  "program name contains the listed school",
			needs: models.ProgramNeeds{},
			player: func() models.Player {
				p := player("SS", "", "")
				p.TopSchools = pq.StringArray{"LSU"}
				return p
			}(),
			program:     "LSU Tigers Baseball",
			wantScore:   10,
			wantReasons: []string{"Interested in your program"},
		},
		{
			name:  "top schools without the program",
			needs: models.ProgramNeeds{},
			player: func() models.Player {
				p := player("SS", "", "")
				p.TopSchools = pq.StringArray{"Rice"}
				return p
			}(),
			program:   "Baylor",
			wantScore: 5,
		},
		{
			name:  "top schools with unknown program",
			needs: models.ProgramNeeds{},
			player: func() models.Player {
				p := player("SS", "", "")
				p.TopSchools = pq.StringArray{"Rice"}
				return p
			}(),
			wantScore:   5,
			wantReasons: []string{"Has top schools listed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.needs, tt.player, tt.metrics, tt.program, w)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantReasons, got.Reasons)
		})
	}
}

func TestMatch_ClampsToMaxScore(t *testing.T) {
	needs := models.ProgramNeeds{
		Positions:        pq.StringArray{"SS"},
		PreferredRegions: pq.StringArray{"TX"},
		MinPitchVelo:     models.Ptr(85.0),
		MinExitVelo:      models.Ptr(85.0),
		MaxSixtyTime:     models.Ptr(7.0),
		MinHeightInches:  models.Ptr(60),
		MaxHeightInches:  models.Ptr(80),
	}
	p := player("SS", "", "TX")
	p.HeightFeet = models.Ptr(6)
	p.HeightInches = models.Ptr(0)
	p.TopSchools = pq.StringArray{"Texas A&M"}
	metrics := models.ResolvedMetrics{
		ThrowVelo: models.Ptr(90.0),
		ExitVelo:  models.Ptr(98.0),
		SixtyTime: models.Ptr(6.6),
	}

	// 30+20+20+15+10+5+5+10 = 115 before clamping
	got := Match(needs, p, metrics, "Texas A&M", DefaultWeights().Match)
	assert.Equal(t, 100, got.Score)
	assert.Len(t, got.Reasons, 6)
}

func TestMatch_ScoreAlwaysInRange(t *testing.T) {
	w := DefaultWeights().Match
	positions := []string{"", "SS", "C", "RHP"}
	velos := []*float64{nil, models.Ptr(0.0), models.Ptr(80.0), models.Ptr(99.0)}

	needs := models.ProgramNeeds{
		Positions:        pq.StringArray{"SS", "C"},
		PreferredRegions: pq.StringArray{"TX"},
		MinPitchVelo:     models.Ptr(85.0),
		MinExitVelo:      models.Ptr(85.0),
		MaxSixtyTime:     models.Ptr(7.0),
	}

	for _, primary := range positions {
		for _, secondary := range positions {
			for i, velo := range velos {
				name := fmt.Sprintf("%s_%s_%d", primary, secondary, i)
				t.Run(name, func(t *testing.T) {
					p := player(primary, secondary, "TX")
					p.TopSchools = pq.StringArray{"Somewhere"}
					got := Match(needs, p, models.ResolvedMetrics{ThrowVelo: velo, ExitVelo: velo, SixtyTime: velo}, "", w)
					assert.GreaterOrEqual(t, got.Score, 0)
					assert.LessOrEqual(t, got.Score, 100)

					primaryHit := primary != "" && (primary == "SS" || primary == "C")
					secondaryReason := secondary + ReasonSecondarySuffix
					if primaryHit {
						assert.NotContains(t, got.Reasons, secondaryReason)
					}
				})
			}
		}
	}
}

func TestRankMatches(t *testing.T) {
	needs := models.ProgramNeeds{
		Positions:        pq.StringArray{"SS"},
		PreferredRegions: pq.StringArray{"TX"},
	}

	var candidates []MatchCandidate
	for i := 0; i < 30; i++ {
		state := "CA"
		if i%3 == 0 {
			state = "TX"
		}
		p := player("SS", "", state)
		p.ID = fmt.Sprintf("p%02d", i)
		candidates = append(candidates, MatchCandidate{Player: p})
	}

	ranked := RankMatches(candidates, needs, "", DefaultWeights())
	require.Len(t, ranked, 20)

	// the ten TX players (50 points) lead in input order, then CA players (30)
	assert.Equal(t, "p00", ranked[0].Player.ID)
	assert.Equal(t, "p03", ranked[1].Player.ID)
	assert.Equal(t, 50, ranked[9].Score)
	assert.Equal(t, 30, ranked[10].Score)
	assert.Equal(t, "p01", ranked[10].Player.ID)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestMatch_CeilingIgnoresOutOfRangeMaxScore(t *testing.T) {
	needs := models.ProgramNeeds{
		Positions:        pq.StringArray{"SS"},
		PreferredRegions: pq.StringArray{"TX"},
		MinPitchVelo:     models.Ptr(85.0),
		MinExitVelo:      models.Ptr(85.0),
		MaxSixtyTime:     models.Ptr(7.0),
	}
	p := player("SS", "", "TX")
	p.TopSchools = pq.StringArray{"Texas A&M"}
	metrics := models.ResolvedMetrics{
		ThrowVelo: models.Ptr(90.0),
		ExitVelo:  models.Ptr(98.0),
		SixtyTime: models.Ptr(6.6),
	}

	tests := []struct {
		name     string
		maxScore int
		want     int
	}{
		{name: "zero", maxScore: 0, want: 100},
		{name: "negative", maxScore: -5, want: 100},
		{name: "above 100", maxScore: 250, want: 100},
		{name: "lower ceiling", maxScore: 60, want: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights().Match
			w.MaxScore = tt.maxScore
			// 30+20+20+15+10+10 = 105 before clamping
			assert.Equal(t, tt.want, Match(needs, p, metrics, "Texas A&M", w).Score)
		})
	}

	assert.Equal(t, 0, Match(needs, p, metrics, "", MatchWeights{}).Score)
}
