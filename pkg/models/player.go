package models

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Player is a recruitable athlete profile.
type Player struct {
	ID                  string         `db:"id" json:"id"`
	FirstName           *string        `db:"first_name" json:"first_name,omitempty"`
	LastName            *string        `db:"last_name" json:"last_name,omitempty"`
	FullName            *string        `db:"full_name" json:"full_name,omitempty"`
	GradYear            *int           `db:"grad_year" json:"grad_year,omitempty"`
	PrimaryPosition     *string        `db:"primary_position" json:"primary_position,omitempty"`
	SecondaryPosition   *string        `db:"secondary_position" json:"secondary_position,omitempty"`
	HighSchoolName      *string        `db:"high_school_name" json:"high_school_name,omitempty"`
	HighSchoolState     *string        `db:"high_school_state" json:"high_school_state,omitempty"`
	HeightFeet          *int           `db:"height_feet" json:"height_feet,omitempty"`
	HeightInches        *int           `db:"height_inches" json:"height_inches,omitempty"`
	WeightLbs           *int           `db:"weight_lbs" json:"weight_lbs,omitempty"`
	Bats                *string        `db:"bats" json:"bats,omitempty"`
	Throws              *string        `db:"throws" json:"throws,omitempty"`
	TopSchools          pq.StringArray `db:"top_schools" json:"top_schools"`
	AvatarURL           *string        `db:"avatar_url" json:"avatar_url,omitempty"`
	OnboardingCompleted bool           `db:"onboarding_completed" json:"onboarding_completed"`
	HasVideo            bool           `db:"has_video" json:"has_video"`
	VerifiedMetrics     bool           `db:"verified_metrics" json:"verified_metrics"`
}

// DisplayName prefers the stored full name and falls back to first + last.
func (p Player) DisplayName() string {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
		return *p.FullName
	}
	return strings.TrimSpace(Deref(p.FirstName) + " " + Deref(p.LastName))
}

// HeightInInches returns feet*12+inches, false when the feet value is unknown.
func (p Player) HeightInInches() (int, bool) {
	if p.HeightFeet == nil || *p.HeightFeet <= 0 {
		return 0, false
	}
	return *p.HeightFeet*12 + Deref(p.HeightInches), true
}

// HeightLabel renders 6'2" style heights.
func (p Player) HeightLabel() *string {
	if p.HeightFeet == nil || p.HeightInches == nil {
		return nil
	}
	label := fmt.Sprintf("%d'%d\"", *p.HeightFeet, *p.HeightInches)
	return &label
}

// PlayerSummary is the compact player shape embedded in pipeline entries.
type PlayerSummary struct {
	ID                string          `json:"id"`
	FullName          string          `json:"full_name"`
	GradYear          *int            `json:"grad_year,omitempty"`
	PrimaryPosition   *string         `json:"primary_position,omitempty"`
	SecondaryPosition *string         `json:"secondary_position,omitempty"`
	HighSchoolState   *string         `json:"high_school_state,omitempty"`
	AvatarURL         *string         `json:"avatar_url,omitempty"`
	Metrics           ResolvedMetrics `json:"metrics"`
}

func (p Player) Summary(metrics ResolvedMetrics) PlayerSummary {
	return PlayerSummary{
		ID:                p.ID,
		FullName:          p.DisplayName(),
		GradYear:          p.GradYear,
		PrimaryPosition:   p.PrimaryPosition,
		SecondaryPosition: p.SecondaryPosition,
		HighSchoolState:   p.HighSchoolState,
		AvatarURL:         p.AvatarURL,
		Metrics:           metrics,
	}
}

// Deref returns the zero value for nil pointers.
func Deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
