package recruiting

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// lookupCoach returns the coach or nil. Coach details only refine scoring,
// so a failed lookup is logged and treated as unknown.
func (s *Service) lookupCoach(ctx context.Context, coachID string) *models.Coach {
	coach, err := s.stores.Coaches.Get(ctx, coachID)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Warn("Coach lookup failed, continuing without coach details")
		return nil
	}
	return coach
}

// resolveNeeds prefers the program_needs row, then the coach's legacy
// recruiting_needs positions, then an unrestricted default.
func (s *Service) resolveNeeds(ctx context.Context, coachID string, coach *models.Coach) models.ProgramNeeds {
	needs, err := s.stores.ProgramNeeds.Get(ctx, coachID)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Warn("Program needs lookup failed, using fallback")
	}
	if err == nil && needs != nil {
		needs.Source = models.NeedsSourceProgram
		return *needs
	}

	if coach != nil {
		return models.ProgramNeeds{
			CoachID:          coachID,
			GradYears:        s.legacyGradYears(),
			Positions:        append(pq.StringArray{}, coach.RecruitingNeeds...),
			PreferredRegions: pq.StringArray{},
			Source:           models.NeedsSourceLegacy,
		}
	}

	return models.ProgramNeeds{
		CoachID:          coachID,
		GradYears:        pq.Int64Array{},
		Positions:        pq.StringArray{},
		PreferredRegions: pq.StringArray{},
		Source:           models.NeedsSourceDefault,
	}
}

func (s *Service) legacyGradYears() pq.Int64Array {
	window := s.cfg.LegacyNeedsYears
	if window <= 0 {
		window = 3
	}
	first := int64(s.now().Year())
	years := make(pq.Int64Array, 0, window)
	for i := 0; i < window; i++ {
		years = append(years, first+int64(i))
	}
	return years
}

// GetProgramNeeds returns the needs the coach's candidates are scored against.
func (s *Service) GetProgramNeeds(ctx context.Context, coachID string) (*models.ProgramNeeds, error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.GetProgramNeeds")
	defer span.End()

	needs := s.resolveNeeds(ctx, coachID, s.lookupCoach(ctx, coachID))
	return &needs, nil
}

func normalizeCodes(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// UpdateProgramNeeds replaces the coach's program needs and copies the
// positions into the legacy coaches.recruiting_needs field.
func (s *Service) UpdateProgramNeeds(ctx context.Context, coachID string, req models.UpdateProgramNeedsRequest) (*models.ProgramNeeds, error) {
	ctx, span := tracing.StartSpan(ctx, "recruiting.Service.UpdateProgramNeeds")
	defer span.End()

	if req.MinHeightInches != nil && req.MaxHeightInches != nil && *req.MinHeightInches > *req.MaxHeightInches {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "min_height_inches must not exceed max_height_inches")
	}

	years := make(pq.Int64Array, 0, len(req.GradYears))
	years = append(years, req.GradYears...)

	needs := &models.ProgramNeeds{
		CoachID:          coachID,
		GradYears:        years,
		Positions:        normalizeCodes(req.Positions),
		PreferredRegions: normalizeCodes(req.PreferredRegions),
		MinHeightInches:  req.MinHeightInches,
		MaxHeightInches:  req.MaxHeightInches,
		MinPitchVelo:     req.MinPitchVelo,
		MinExitVelo:      req.MinExitVelo,
		MaxSixtyTime:     req.MaxSixtyTime,
		UpdatedAt:        s.now().UTC(),
	}

	if err := s.stores.ProgramNeeds.Upsert(ctx, needs); err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	needs.Source = models.NeedsSourceProgram

	if err := s.stores.Coaches.UpdateRecruitingNeeds(ctx, coachID, needs.Positions); err != nil {
		metrics.LegacyWriteFailures.WithLabelValues("program_needs").Inc()
		s.logger.WithContext(ctx).WithError(err).WithField("coach_id", coachID).Warn("Failed to mirror positions into coach recruiting needs")
	}

	return needs, nil
}
