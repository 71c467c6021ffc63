package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestToLegacyFromLegacyRoundTrip(t *testing.T) {
	for _, status := range models.PipelineStatuses {
		got, ok := FromLegacy(ToLegacy(status))
		assert.True(t, ok, status)
		assert.Equal(t, status, got)
	}
}

func TestToLegacy(t *testing.T) {
	assert.Equal(t, "High Priority", ToLegacy(models.StatusHighPriority))
	assert.Equal(t, "Offered", ToLegacy(models.StatusOfferExtended))
	assert.Equal(t, "Watchlist", ToLegacy(models.PipelineStatus("archived")))
}

func TestFromLegacy(t *testing.T) {
	tests := []struct {
		stage  string
		want   models.PipelineStatus
		wantOK bool
	}{
		{"Watchlist", models.StatusWatchlist, true},
		{"Evaluating", models.StatusHighPriority, true},
		{"High Priority", models.StatusHighPriority, true},
		{"Offered", models.StatusOfferExtended, true},
		{"Committed", models.StatusCommitted, true},
		{"Uninterested", models.StatusUninterested, true},
		{"Signed", models.StatusWatchlist, false},
		{"", models.StatusWatchlist, false},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			got, ok := FromLegacy(tt.stage)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityA, PriorityFor(models.StatusHighPriority))
	assert.Equal(t, PriorityA, PriorityFor(models.StatusOfferExtended))
	assert.Equal(t, PriorityB, PriorityFor(models.StatusWatchlist))
	assert.Equal(t, PriorityB, PriorityFor(models.StatusCommitted))
	assert.Equal(t, PriorityB, PriorityFor(models.StatusUninterested))
}

func TestLegacyRecruitFor(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	p := models.Player{
		ID:              "player-1",
		FirstName:       models.Ptr("Jordan"),
		LastName:        models.Ptr("Reyes"),
		GradYear:        models.Ptr(2027),
		PrimaryPosition: models.Ptr("SS"),
		HighSchoolName:  models.Ptr("Westlake"),
		HighSchoolState: models.Ptr("TX"),
	}

	r := LegacyRecruitFor(p, "coach-1", models.StatusOfferExtended, at)

	require.NotNil(t, r.PlayerID)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "player-1", *r.PlayerID)
	assert.Equal(t, "coach-1", r.CoachID)
	assert.Equal(t, "Jordan Reyes", r.Name)
	assert.Equal(t, "2027", models.Deref(r.GradYear))
	assert.Equal(t, "SS", models.Deref(r.PrimaryPosition))
	assert.Equal(t, "Offered", r.Stage)
	assert.Equal(t, PriorityA, r.Priority)
	assert.Equal(t, at, r.CreatedAt)
}

func TestFromLegacyRecruit(t *testing.T) {
	r := models.LegacyRecruit{
		ID:       "legacy-1",
		CoachID:  "coach-1",
		PlayerID: models.Ptr("player-1"),
		Stage:    "Evaluating",
		Notes:    models.Ptr("saw him at the showcase"),
	}

	e := FromLegacyRecruit(r)
	assert.Equal(t, "legacy-1", e.ID)
	assert.Equal(t, "player-1", e.PlayerID)
	assert.Equal(t, models.StatusHighPriority, e.Status)
	assert.Equal(t, models.PipelineSourceLegacy, e.Source)
	assert.Equal(t, r.Notes, e.Notes)
}
