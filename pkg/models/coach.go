package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

type Coach struct {
	ID              string         `db:"id" json:"id"`
	FullName        *string        `db:"full_name" json:"full_name,omitempty"`
	SchoolName      *string        `db:"school_name" json:"school_name,omitempty"`
	ProgramName     *string        `db:"program_name" json:"program_name,omitempty"`
	RecruitingNeeds pq.StringArray `db:"recruiting_needs" json:"recruiting_needs"`
}

// ProgramLabel is the name players list in their top schools: the program
// name when set, otherwise the school name.
func (c Coach) ProgramLabel() string {
	if c.ProgramName != nil && strings.TrimSpace(*c.ProgramName) != "" {
		return strings.TrimSpace(*c.ProgramName)
	}
	return strings.TrimSpace(Deref(c.SchoolName))
}

// ProgramNeeds is a coach's recruiting target profile.
type ProgramNeeds struct {
	CoachID          string         `db:"coach_id" json:"coach_id"`
	GradYears        pq.Int64Array  `db:"grad_years" json:"grad_years"`
	Positions        pq.StringArray `db:"positions" json:"positions"`
	PreferredRegions pq.StringArray `db:"preferred_regions" json:"preferred_regions"`
	MinHeightInches  *int           `db:"min_height_inches" json:"min_height_inches,omitempty"`
	MaxHeightInches  *int           `db:"max_height_inches" json:"max_height_inches,omitempty"`
	MinPitchVelo     *float64       `db:"min_pitch_velo" json:"min_pitch_velo,omitempty"`
	MinExitVelo      *float64       `db:"min_exit_velo" json:"min_exit_velo,omitempty"`
	MaxSixtyTime     *float64       `db:"max_sixty_time" json:"max_sixty_time,omitempty"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
	Source           NeedsSource    `db:"-" json:"source"`
}

// NeedsSource records where a coach's resolved program needs came from.
type NeedsSource string

const (
	NeedsSourceProgram NeedsSource = "program_needs"
	NeedsSourceLegacy  NeedsSource = "coach_recruiting_needs"
	NeedsSourceDefault NeedsSource = "default"
)

type UpdateProgramNeedsRequest struct {
	GradYears        []int64  `json:"grad_years" validate:"dive,gte=2000,lte=2100"`
	Positions        []string `json:"positions" validate:"dive,required,max=10"`
	PreferredRegions []string `json:"preferred_regions" validate:"dive,len=2"`
	MinHeightInches  *int     `json:"min_height_inches,omitempty" validate:"omitempty,gt=0,lt=120"`
	MaxHeightInches  *int     `json:"max_height_inches,omitempty" validate:"omitempty,gt=0,lt=120"`
	MinPitchVelo     *float64 `json:"min_pitch_velo,omitempty" validate:"omitempty,gt=0"`
	MinExitVelo      *float64 `json:"min_exit_velo,omitempty" validate:"omitempty,gt=0"`
	MaxSixtyTime     *float64 `json:"max_sixty_time,omitempty" validate:"omitempty,gt=0"`
}
