package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/migraine"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EpisodeRepositoryInterface defines the interface for migraine episode access
type EpisodeRepositoryInterface interface {
	FindByUserIDInRange(ctx context.Context, userID string, start, end int64) ([]model.Episode, error)
}

// HealthDataRepositoryInterface defines the interface for blood pressure and meditation access
type HealthDataRepositoryInterface interface {
	GetBloodPressureInRange(ctx context.Context, userID string, start, end int64) ([]model.BloodPressureReading, error)
	GetMeditationInRange(ctx context.Context, userID string, start, end int64) ([]model.MeditationLog, error)
}

// MedicationRepositoryInterface defines the interface for medication access
type MedicationRepositoryInterface interface {
	FindByUserID(ctx context.Context, userID string) ([]model.Medication, error)
	GetSchedulesByUserID(ctx context.Context, userID string) ([]model.DoseSchedule, error)
	GetLogsInRange(ctx context.Context, userID string, start, end int64) ([]model.MedicationLog, error)
}

// SummaryService builds the clinician-facing migraine summary
type SummaryService struct {
	episodes    EpisodeRepositoryInterface
	health      HealthDataRepositoryInterface
	medications MedicationRepositoryInterface
	logger      *zap.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	episodes EpisodeRepositoryInterface,
	health HealthDataRepositoryInterface,
	medications MedicationRepositoryInterface,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		episodes:    episodes,
		health:      health,
		medications: medications,
		logger:      logger,
	}
}

// summaryInputs is everything ComputeDoctorSummary reads for one user and window
type summaryInputs struct {
	episodes    []model.Episode
	bp          []model.BloodPressureReading
	medications []model.Medication
	schedules   []model.DoseSchedule
	logs        []model.MedicationLog
	meditation  []model.MeditationLog
}

// DoctorSummary computes the summary for the inclusive window [start, end]
func (s *SummaryService) DoctorSummary(ctx context.Context, userID string, start, end time.Time) (*migraine.DoctorSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	s.logger.Info("computing doctor summary",
		zap.String("user_id", userID),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	rangeStart, rangeEnd := start.UnixMilli(), end.UnixMilli()
	in, err := s.load(ctx, userID, rangeStart, rangeEnd)
	if err != nil {
		s.logger.Error("failed to load doctor summary inputs",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, err
	}

	summary := migraine.ComputeDoctorSummary(
		in.episodes, in.bp, in.medications, in.schedules, in.logs, in.meditation,
		rangeStart, rangeEnd,
	)

	s.logger.Info("doctor summary computed",
		zap.String("user_id", userID),
		zap.String("classification", string(summary.Classification.Type)),
		zap.Int("episodes", summary.MigraineStats.TotalEpisodes),
		zap.Int("red_flags", len(summary.RedFlags)),
		zap.Bool("overuse_risk", summary.OveruseRisk.HasRisk),
	)

	return &summary, nil
}

// DoctorSummaryText renders DoctorSummary as clinician text
func (s *SummaryService) DoctorSummaryText(ctx context.Context, userID string, start, end time.Time) (string, error) {
	summary, err := s.DoctorSummary(ctx, userID, start, end)
	if err != nil {
		return "", err
	}
	return migraine.FormatDoctorSummary(*summary), nil
}

// load reads the summary inputs concurrently
func (s *SummaryService) load(ctx context.Context, userID string, start, end int64) (*summaryInputs, error) {
	var in summaryInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if in.episodes, err = s.episodes.FindByUserIDInRange(gctx, userID, start, end); err != nil {
			return fmt.Errorf("failed to get episodes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.bp, err = s.health.GetBloodPressureInRange(gctx, userID, start, end); err != nil {
			return fmt.Errorf("failed to get blood pressure readings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.meditation, err = s.health.GetMeditationInRange(gctx, userID, start, end); err != nil {
			return fmt.Errorf("failed to get meditation sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.medications, err = s.medications.FindByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get medications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.schedules, err = s.medications.GetSchedulesByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get dose schedules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.logs, err = s.medications.GetLogsInRange(gctx, userID, start, end); err != nil {
			return fmt.Errorf("failed to get medication logs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}
