package adherence

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store reads transformation records for a user within an epoch-ms range
type Store interface {
	GetWorkoutLogs(ctx context.Context, userID string, start, end int64) ([]model.WorkoutLog, error)
	GetMealPlanLogs(ctx context.Context, userID string, start, end int64) ([]model.MealPlanLog, error)
	GetRoutineChecklists(ctx context.Context, userID string, start, end int64) ([]model.RoutineChecklist, error)
	GetWeeklyCheckins(ctx context.Context, userID string, start, end int64) ([]model.WeeklyCheckin, error)
	// GetTransformationGoal returns nil without error when the user has no goal
	GetTransformationGoal(ctx context.Context, userID string) (*model.TransformationGoal, error)
}

// Options configures scoring targets
type Options struct {
	WorkoutWeeklyTarget    int
	DefaultProteinMinGrams float64
}

// Engine computes adherence percentages from stored records
type Engine struct {
	store  Store
	opts   Options
	now    func() time.Time
	logger *zap.Logger
}

// NewEngine creates a new adherence engine
func NewEngine(store Store, opts Options, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock returns a copy of the engine that reads the time from now
func (e *Engine) WithClock(now func() time.Time) *Engine {
	clone := *e
	clone.now = now
	return &clone
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) resolve(w Window) Window {
	if w.IsZero() {
		return CurrentWeek(e.now())
	}
	return w
}

// WorkoutAdherencePct returns workout adherence for the window (current week when zero)
func (e *Engine) WorkoutAdherencePct(ctx context.Context, userID string, w Window) (float64, error) {
	w = e.resolve(w)
	logs, err := e.store.GetWorkoutLogs(ctx, userID, w.Start.UnixMilli(), w.End.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to get workout logs: %w", err)
	}
	return WorkoutPct(logs, e.opts.WorkoutWeeklyTarget), nil
}

// ProteinCompliancePct returns protein compliance for the window
func (e *Engine) ProteinCompliancePct(ctx context.Context, userID string, w Window) (float64, error) {
	w = e.resolve(w)
	meals, err := e.store.GetMealPlanLogs(ctx, userID, w.Start.UnixMilli(), w.End.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to get meal plan logs: %w", err)
	}
	minGrams, err := e.proteinMinimum(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ProteinCompliancePct(meals, minGrams), nil
}

func (e *Engine) proteinMinimum(ctx context.Context, userID string) (float64, error) {
	goal, err := e.store.GetTransformationGoal(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get transformation goal: %w", err)
	}
	if goal != nil {
		if v := normalize.SafeNumber(goal.ProteinMinGrams); v != nil && *v > 0 {
			return *v, nil
		}
	}
	return e.opts.DefaultProteinMinGrams, nil
}

// HabitCompletionPct returns checklist habit completion for the window
func (e *Engine) HabitCompletionPct(ctx context.Context, userID string, w Window) (float64, error) {
	w = e.resolve(w)
	rows, err := e.store.GetRoutineChecklists(ctx, userID, w.Start.UnixMilli(), w.End.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to get routine checklists: %w", err)
	}
	return HabitCompletionPct(rows), nil
}

// CheckinCompletion returns 100 when a weekly check-in exists in the window, else 0
func (e *Engine) CheckinCompletion(ctx context.Context, userID string, w Window) (float64, error) {
	w = e.resolve(w)
	checkins, err := e.store.GetWeeklyCheckins(ctx, userID, w.Start.UnixMilli(), w.End.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to get weekly checkins: %w", err)
	}
	return CheckinPct(checkins, w), nil
}

// TransformationScore reads the four components concurrently and combines them once
// all reads have succeeded
func (e *Engine) TransformationScore(ctx context.Context, userID string, w Window) (TransformationScore, error) {
	w = e.resolve(w)

	var workout, protein, habits, checkin float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		workout, err = e.WorkoutAdherencePct(gctx, userID, w)
		return err
	})
	g.Go(func() error {
		var err error
		protein, err = e.ProteinCompliancePct(gctx, userID, w)
		return err
	})
	g.Go(func() error {
		var err error
		habits, err = e.HabitCompletionPct(gctx, userID, w)
		return err
	})
	g.Go(func() error {
		var err error
		checkin, err = e.CheckinCompletion(gctx, userID, w)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Error("Failed to compute transformation score",
			zap.String("user_id", userID),
			zap.Error(err))
		return TransformationScore{}, err
	}

	score := Score(workout, protein, habits, checkin)
	e.logger.Debug("Computed transformation score",
		zap.String("user_id", userID),
		zap.Time("window_start", w.Start),
		zap.Int("score", score.Score))
	return score, nil
}
