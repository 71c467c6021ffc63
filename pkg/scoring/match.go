package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/clover/pkg/models"
)

const (
	ReasonSecondarySuffix  = " (secondary)"
	ReasonPreferredRegion  = "Preferred region"
	ReasonProgramInterest  = "Interested in your program"
	ReasonTopSchoolsListed = "Has top schools listed"
)

// MatchScore is a player's fit against a program, with the reasons that
// earned points in rule order.
type MatchScore struct {
	Score   int
	Reasons []string
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Match scores one player against program needs. programLabel is the coach's
// program or school name and may be empty when unknown.
func Match(needs models.ProgramNeeds, player models.Player, metrics models.ResolvedMetrics, programLabel string, w MatchWeights) MatchScore {
	var (
		score   int
		reasons []string
	)
	award := func(points int, reason string) {
		score += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	primary := models.Deref(player.PrimaryPosition)
	secondary := models.Deref(player.SecondaryPosition)
	switch {
	case primary != "" && ectolinq.Contains(needs.Positions, primary):
		award(w.PrimaryPosition, primary)
	case secondary != "" && ectolinq.Contains(needs.Positions, secondary):
		award(w.SecondaryPosition, secondary+ReasonSecondarySuffix)
	}

	if region := models.Deref(player.HighSchoolState); region != "" && ectolinq.Contains(needs.PreferredRegions, region) {
		award(w.PreferredRegion, ReasonPreferredRegion)
	}

	if needs.MinPitchVelo != nil && metrics.ThrowVelo != nil && *metrics.ThrowVelo >= *needs.MinPitchVelo {
		award(w.ThrowVelo, fmt.Sprintf("%smph FB", formatNumber(*metrics.ThrowVelo)))
	}

	if needs.MinExitVelo != nil && metrics.ExitVelo != nil && *metrics.ExitVelo >= *needs.MinExitVelo {
		award(w.ExitVelo, fmt.Sprintf("%smph exit velo", formatNumber(*metrics.ExitVelo)))
	}

	if needs.MaxSixtyTime != nil && metrics.SixtyTime != nil && *metrics.SixtyTime > 0 && *metrics.SixtyTime <= *needs.MaxSixtyTime {
		award(w.SixtyTime, fmt.Sprintf("%ss 60-yard", formatNumber(*metrics.SixtyTime)))
	}

	if height, ok := player.HeightInInches(); ok {
		if needs.MinHeightInches != nil && height >= *needs.MinHeightInches {
			award(w.MinHeight, "")
		}
		if needs.MaxHeightInches != nil && height <= *needs.MaxHeightInches {
			award(w.MaxHeight, "")
		}
	}

	if len(player.TopSchools) > 0 {
		switch {
		case programLabel == "":
			award(w.TopSchoolsListed, ReasonTopSchoolsListed)
		case listsProgram(player.TopSchools, programLabel):
			award(w.ProgramInterest, ReasonProgramInterest)
		default:
			award(w.TopSchoolsListed, "")
		}
	}

	return MatchScore{
		Score:   clamp(score, 0, w.Ceiling()),
		Reasons: reasons,
	}
}

// listsProgram reports whether any listed school names the program, matching
// case-insensitively as a substring in either direction ("Texas" and
// "University of Texas" match each other).
func listsProgram(schools []string, programLabel string) bool {
	program := strings.ToLower(strings.TrimSpace(programLabel))
	for _, school := range schools {
		s := strings.ToLower(strings.TrimSpace(school))
		if s == "" {
			continue
		}
		if strings.Contains(s, program) || strings.Contains(program, s) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type MatchCandidate struct {
	Player  models.Player
	Metrics models.ResolvedMetrics
}

type RankedMatch struct {
	MatchCandidate
	MatchScore
}

// RankMatches scores every candidate and returns the best fits, highest
// first. Equal scores keep their input order.
func RankMatches(candidates []MatchCandidate, needs models.ProgramNeeds, programLabel string, w Weights) []RankedMatch {
	ranked := ectolinq.Map(candidates, func(c MatchCandidate) RankedMatch {
		return RankedMatch{
			MatchCandidate: c,
			MatchScore:     Match(needs, c.Player, c.Metrics, programLabel, w.Match),
		}
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return truncate(ranked, w.Limits.ResultLimit)
}
