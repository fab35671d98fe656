package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"go.uber.org/zap"
)

// TransformationReport is the score together with the window it covers
type TransformationReport struct {
	Window adherence.Window              `json:"window"`
	Score  adherence.TransformationScore `json:"score"`
}

// AdherenceService handles transformation scoring and per-item adherence
type AdherenceService struct {
	engine      *adherence.Engine
	medications MedicationRepositoryInterface
	logger      *zap.Logger
}

// NewAdherenceService creates a new AdherenceService
func NewAdherenceService(engine *adherence.Engine, medications MedicationRepositoryInterface, logger *zap.Logger) *AdherenceService {
	return &AdherenceService{
		engine:      engine,
		medications: medications,
		logger:      logger,
	}
}

// TransformationScore scores the window, defaulting to the current Monday-start week
func (s *AdherenceService) TransformationScore(ctx context.Context, userID string, w adherence.Window) (*TransformationReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if w.IsZero() {
		w = adherence.CurrentWeek(s.engine.Now())
	}
	if w.End.Before(w.Start) {
		return nil, fmt.Errorf("invalid range: end is before start")
	}

	score, err := s.engine.TransformationScore(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("failed to compute transformation score: %w", err)
	}

	s.logger.Info("transformation score computed",
		zap.String("user_id", userID),
		zap.Int("score", score.Score),
		zap.Float64("workout_pct", score.WorkoutPct),
		zap.Float64("protein_pct", score.ProteinPct),
		zap.Float64("habit_pct", score.HabitPct),
		zap.Float64("checkin_pct", score.CheckinPct),
	)

	return &TransformationReport{Window: w, Score: score}, nil
}

// ItemAdherence returns streak and adherence ratio for each active medication and supplement
func (s *AdherenceService) ItemAdherence(ctx context.Context, userID string) ([]adherence.ItemAdherence, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	items, err := s.medications.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get medications for adherence",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get medications: %w", err)
	}

	now := s.engine.Now()
	var earliest int64
	first := true
	for _, item := range items {
		if !item.Active {
			continue
		}
		if first || item.StartedAt < earliest {
			earliest = item.StartedAt
			first = false
		}
	}
	if first {
		return []adherence.ItemAdherence{}, nil
	}

	// Ratios count whole days, so fetch from the start of the first item's start day
	from := normalize.StartOfDay(time.UnixMilli(earliest)).UnixMilli()
	logs, err := s.medications.GetLogsInRange(ctx, userID, from, now.UnixMilli())
	if err != nil {
		s.logger.Error("failed to get medication logs for adherence",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get medication logs: %w", err)
	}

	result := adherence.ComputeItemAdherence(items, logs, now)

	s.logger.Info("item adherence computed",
		zap.String("user_id", userID),
		zap.Int("items", len(result)),
		zap.Int("logs", len(logs)),
	)

	return result, nil
}
