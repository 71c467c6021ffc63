package pipeline

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Legacy recruits stages. The recruits table predates recruit_watchlist and
// stores display labels rather than status keys.
const (
	StageWatchlist    = "Watchlist"
	StageEvaluating   = "Evaluating"
	StageHighPriority = "High Priority"
	StageOffered      = "Offered"
	StageCommitted    = "Committed"
	StageUninterested = "Uninterested"
)

const (
	PriorityA = "A"
	PriorityB = "B"
)

var statusToStage = map[models.PipelineStatus]string{
	models.StatusWatchlist:     StageWatchlist,
	models.StatusHighPriority:  StageHighPriority,
	models.StatusOfferExtended: StageOffered,
	models.StatusCommitted:     StageCommitted,
	models.StatusUninterested:  StageUninterested,
}

var stageToStatus = map[string]models.PipelineStatus{
	StageWatchlist:    models.StatusWatchlist,
	StageEvaluating:   models.StatusHighPriority,
	StageHighPriority: models.StatusHighPriority,
	StageOffered:      models.StatusOfferExtended,
	StageCommitted:    models.StatusCommitted,
	StageUninterested: models.StatusUninterested,
}

// ToLegacy returns the recruits stage for a status. Unknown statuses map to
// the watchlist stage.
func ToLegacy(status models.PipelineStatus) string {
	if stage, ok := statusToStage[status]; ok {
		return stage
	}
	return StageWatchlist
}

// FromLegacy returns the status for a recruits stage and whether the stage
// was recognised. Unrecognised stages read as watchlist.
func FromLegacy(stage string) (models.PipelineStatus, bool) {
	status, ok := stageToStatus[stage]
	if !ok {
		return models.StatusWatchlist, false
	}
	return status, true
}

// PriorityFor returns the recruits priority letter for a status.
func PriorityFor(status models.PipelineStatus) string {
	switch status {
	case models.StatusHighPriority, models.StatusOfferExtended:
		return PriorityA
	default:
		return PriorityB
	}
}

// FromLegacyRecruit converts a recruits row into the unified entry shape.
func FromLegacyRecruit(r models.LegacyRecruit) models.PipelineEntry {
	status, _ := FromLegacy(r.Stage)
	return models.PipelineEntry{
		ID:        r.ID,
		CoachID:   r.CoachID,
		PlayerID:  models.Deref(r.PlayerID),
		Status:    status,
		Notes:     r.Notes,
		Source:    models.PipelineSourceLegacy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// LegacyRecruitFor builds the recruits row for a player. recruits keeps its
// own copy of the player's display fields and stores grad year as text.
func LegacyRecruitFor(p models.Player, coachID string, status models.PipelineStatus, at time.Time) models.LegacyRecruit {
	var gradYear *string
	if p.GradYear != nil {
		gradYear = models.Ptr(strconv.Itoa(*p.GradYear))
	}
	playerID := p.ID

	return models.LegacyRecruit{
		ID:              uuid.NewString(),
		CoachID:         coachID,
		PlayerID:        &playerID,
		Name:            p.DisplayName(),
		GradYear:        gradYear,
		PrimaryPosition: p.PrimaryPosition,
		HighSchoolName:  p.HighSchoolName,
		HighSchoolState: p.HighSchoolState,
		Stage:           ToLegacy(status),
		Priority:        PriorityFor(status),
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}
