package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
)

// TransformationRepository manages the fitness and routine tracker records
type TransformationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTransformationRepository creates a new TransformationRepository
func NewTransformationRepository(db *pgxpool.Pool, logger *zap.Logger) *TransformationRepository {
	return &TransformationRepository{
		db:     db,
		logger: logger,
	}
}

// SaveWorkout saves a workout log
func (r *TransformationRepository) SaveWorkout(ctx context.Context, w *model.WorkoutLog) error {
	query := `
		INSERT INTO workout_logs (id, user_id, performed_at, kind, duration_min)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, w.ID, w.UserID, w.PerformedAt, w.Kind, numberColumn(w.DurationMin)); err != nil {
		r.logger.Error("failed to save workout", zap.Error(err), zap.String("user_id", w.UserID))
		return fmt.Errorf("failed to save workout: %w", err)
	}

	return nil
}

// GetWorkoutLogs retrieves workouts performed within [start, end]
func (r *TransformationRepository) GetWorkoutLogs(ctx context.Context, userID string, start, end int64) ([]model.WorkoutLog, error) {
	query := `
		SELECT id, user_id, performed_at, kind, duration_min
		FROM workout_logs
		WHERE user_id = $1 AND performed_at BETWEEN $2 AND $3
		ORDER BY performed_at
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get workout logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get workout logs: %w", err)
	}
	defer rows.Close()

	logs := []model.WorkoutLog{}
	for rows.Next() {
		var w model.WorkoutLog
		if err := rows.Scan(&w.ID, &w.UserID, &w.PerformedAt, &w.Kind, &w.DurationMin); err != nil {
			r.logger.Error("failed to scan workout log", zap.Error(err))
			continue
		}
		logs = append(logs, w)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating workout logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating workout logs: %w", err)
	}

	return logs, nil
}

// UpsertMealPlan saves the meal plan log of a day, replacing any earlier row for that day
func (r *TransformationRepository) UpsertMealPlan(ctx context.Context, m *model.MealPlanLog) error {
	query := `
		INSERT INTO meal_plan_logs (
			id, user_id, date, breakfast_done, lunch_done, dinner_done, snack_done, protein_grams
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, date) DO UPDATE SET
			breakfast_done = EXCLUDED.breakfast_done,
			lunch_done = EXCLUDED.lunch_done,
			dinner_done = EXCLUDED.dinner_done,
			snack_done = EXCLUDED.snack_done,
			protein_grams = EXCLUDED.protein_grams
	`

	_, err := r.db.Exec(ctx, query,
		m.ID, m.UserID, m.Date,
		m.BreakfastDone, m.LunchDone, m.DinnerDone, m.SnackDone,
		numberColumn(m.ProteinGrams),
	)
	if err != nil {
		r.logger.Error("failed to save meal plan log", zap.Error(err), zap.String("user_id", m.UserID))
		return fmt.Errorf("failed to save meal plan log: %w", err)
	}

	return nil
}

// GetMealPlanLogs retrieves meal plan logs dated within [start, end]
func (r *TransformationRepository) GetMealPlanLogs(ctx context.Context, userID string, start, end int64) ([]model.MealPlanLog, error) {
	query := `
		SELECT id, user_id, date, breakfast_done, lunch_done, dinner_done, snack_done, protein_grams
		FROM meal_plan_logs
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get meal plan logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get meal plan logs: %w", err)
	}
	defer rows.Close()

	logs := []model.MealPlanLog{}
	for rows.Next() {
		var m model.MealPlanLog
		err := rows.Scan(
			&m.ID, &m.UserID, &m.Date,
			&m.BreakfastDone, &m.LunchDone, &m.DinnerDone, &m.SnackDone,
			&m.ProteinGrams,
		)
		if err != nil {
			r.logger.Error("failed to scan meal plan log", zap.Error(err))
			continue
		}
		logs = append(logs, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating meal plan logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating meal plan logs: %w", err)
	}

	return logs, nil
}

// UpsertChecklist saves the routine checklist of a day; a day keeps at most one row
func (r *TransformationRepository) UpsertChecklist(ctx context.Context, c *model.RoutineChecklist) error {
	query := `
		INSERT INTO routine_checklists (
			id, user_id, date,
			workout, cardio, steps, water, protein, creatine, supplements,
			skincare_am, skincare_pm, sunscreen, stretching, sleep_8h, no_alcohol
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id, date) DO UPDATE SET
			workout = EXCLUDED.workout, cardio = EXCLUDED.cardio, steps = EXCLUDED.steps,
			water = EXCLUDED.water, protein = EXCLUDED.protein, creatine = EXCLUDED.creatine,
			supplements = EXCLUDED.supplements, skincare_am = EXCLUDED.skincare_am,
			skincare_pm = EXCLUDED.skincare_pm, sunscreen = EXCLUDED.sunscreen,
			stretching = EXCLUDED.stretching, sleep_8h = EXCLUDED.sleep_8h,
			no_alcohol = EXCLUDED.no_alcohol
	`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.UserID, c.Date,
		c.Workout, c.Cardio, c.Steps, c.Water, c.Protein, c.Creatine, c.Supplements,
		c.SkincareAM, c.SkincarePM, c.Sunscreen, c.Stretching, c.SleepEightHours, c.NoAlcohol,
	)
	if err != nil {
		r.logger.Error("failed to save routine checklist", zap.Error(err), zap.String("user_id", c.UserID))
		return fmt.Errorf("failed to save routine checklist: %w", err)
	}

	return nil
}

// GetRoutineChecklists retrieves checklist rows dated within [start, end]
func (r *TransformationRepository) GetRoutineChecklists(ctx context.Context, userID string, start, end int64) ([]model.RoutineChecklist, error) {
	query := `
		SELECT id, user_id, date,
			workout, cardio, steps, water, protein, creatine, supplements,
			skincare_am, skincare_pm, sunscreen, stretching, sleep_8h, no_alcohol
		FROM routine_checklists
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get routine checklists", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get routine checklists: %w", err)
	}
	defer rows.Close()

	checklists := []model.RoutineChecklist{}
	for rows.Next() {
		var c model.RoutineChecklist
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Date,
			&c.Workout, &c.Cardio, &c.Steps, &c.Water, &c.Protein, &c.Creatine, &c.Supplements,
			&c.SkincareAM, &c.SkincarePM, &c.Sunscreen, &c.Stretching, &c.SleepEightHours, &c.NoAlcohol,
		)
		if err != nil {
			r.logger.Error("failed to scan routine checklist", zap.Error(err))
			continue
		}
		checklists = append(checklists, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating routine checklists", zap.Error(err))
		return nil, fmt.Errorf("error iterating routine checklists: %w", err)
	}

	return checklists, nil
}

// SaveWeeklyCheckin saves a weekly body check-in
func (r *TransformationRepository) SaveWeeklyCheckin(ctx context.Context, c *model.WeeklyCheckin) error {
	query := `
		INSERT INTO weekly_checkins (id, user_id, checked_at, weight_kg, waist_cm, steps)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.UserID, c.CheckedAt,
		numberColumn(c.WeightKg), numberColumn(c.WaistCm), numberColumn(c.Steps),
	)
	if err != nil {
		r.logger.Error("failed to save weekly checkin", zap.Error(err), zap.String("user_id", c.UserID))
		return fmt.Errorf("failed to save weekly checkin: %w", err)
	}

	return nil
}

// GetWeeklyCheckins retrieves check-ins made within [start, end]
func (r *TransformationRepository) GetWeeklyCheckins(ctx context.Context, userID string, start, end int64) ([]model.WeeklyCheckin, error) {
	query := `
		SELECT id, user_id, checked_at, weight_kg, waist_cm, steps
		FROM weekly_checkins
		WHERE user_id = $1 AND checked_at BETWEEN $2 AND $3
		ORDER BY checked_at
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get weekly checkins", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get weekly checkins: %w", err)
	}
	defer rows.Close()

	checkins := []model.WeeklyCheckin{}
	for rows.Next() {
		var c model.WeeklyCheckin
		if err := rows.Scan(&c.ID, &c.UserID, &c.CheckedAt, &c.WeightKg, &c.WaistCm, &c.Steps); err != nil {
			r.logger.Error("failed to scan weekly checkin", zap.Error(err))
			continue
		}
		checkins = append(checkins, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating weekly checkins", zap.Error(err))
		return nil, fmt.Errorf("error iterating weekly checkins: %w", err)
	}

	return checkins, nil
}

// UpsertGoal saves the user's transformation goal
func (r *TransformationRepository) UpsertGoal(ctx context.Context, g *model.TransformationGoal) error {
	query := `
		INSERT INTO transformation_goals (id, user_id, protein_min_grams, target_weight_kg, started_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			protein_min_grams = EXCLUDED.protein_min_grams,
			target_weight_kg = EXCLUDED.target_weight_kg,
			started_at = EXCLUDED.started_at
	`

	_, err := r.db.Exec(ctx, query,
		g.ID, g.UserID, numberColumn(g.ProteinMinGrams), numberColumn(g.TargetWeightKg), g.StartedAt,
	)
	if err != nil {
		r.logger.Error("failed to save transformation goal", zap.Error(err), zap.String("user_id", g.UserID))
		return fmt.Errorf("failed to save transformation goal: %w", err)
	}

	return nil
}

// FindGoal retrieves the user's transformation goal, or ErrNotFound
func (r *TransformationRepository) FindGoal(ctx context.Context, userID string) (*model.TransformationGoal, error) {
	query := `
		SELECT id, user_id, protein_min_grams, target_weight_kg, started_at
		FROM transformation_goals
		WHERE user_id = $1
	`

	var g model.TransformationGoal
	err := r.db.QueryRow(ctx, query, userID).Scan(&g.ID, &g.UserID, &g.ProteinMinGrams, &g.TargetWeightKg, &g.StartedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transformation goal for %s: %w", userID, ErrNotFound)
		}
		r.logger.Error("failed to find transformation goal", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find transformation goal: %w", err)
	}

	return &g, nil
}

// GetTransformationGoal is FindGoal with a missing goal reported as nil
func (r *TransformationRepository) GetTransformationGoal(ctx context.Context, userID string) (*model.TransformationGoal, error) {
	g, err := r.FindGoal(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return g, err
}
