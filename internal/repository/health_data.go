package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
)

// HealthDataRepository manages blood pressure and meditation records
type HealthDataRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewHealthDataRepository creates a new HealthDataRepository
func NewHealthDataRepository(db *pgxpool.Pool, logger *zap.Logger) *HealthDataRepository {
	return &HealthDataRepository{
		db:     db,
		logger: logger,
	}
}

// SaveBloodPressure saves a blood pressure reading
func (r *HealthDataRepository) SaveBloodPressure(ctx context.Context, reading *model.BloodPressureReading) error {
	query := `
		INSERT INTO blood_pressure_readings (
			id, user_id, systolic, diastolic, pulse,
			measured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		reading.ID,
		reading.UserID,
		numberColumn(reading.Systolic),
		numberColumn(reading.Diastolic),
		numberColumn(reading.Pulse),
		reading.MeasuredAt,
	)

	if err != nil {
		r.logger.Error("failed to save blood pressure reading",
			zap.Error(err),
			zap.String("user_id", reading.UserID),
		)
		return fmt.Errorf("failed to save blood pressure reading: %w", err)
	}

	return nil
}

// GetBloodPressureInRange retrieves readings measured within [start, end], newest first
func (r *HealthDataRepository) GetBloodPressureInRange(ctx context.Context, userID string, start, end int64) ([]model.BloodPressureReading, error) {
	query := `
		SELECT id, user_id, systolic, diastolic, pulse, measured_at
		FROM blood_pressure_readings
		WHERE user_id = $1 AND measured_at BETWEEN $2 AND $3
		ORDER BY measured_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get blood pressure readings", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get blood pressure readings: %w", err)
	}
	defer rows.Close()

	readings := []model.BloodPressureReading{}
	for rows.Next() {
		var reading model.BloodPressureReading
		err := rows.Scan(
			&reading.ID,
			&reading.UserID,
			&reading.Systolic,
			&reading.Diastolic,
			&reading.Pulse,
			&reading.MeasuredAt,
		)
		if err != nil {
			r.logger.Error("failed to scan blood pressure reading", zap.Error(err))
			continue
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating blood pressure readings", zap.Error(err))
		return nil, fmt.Errorf("error iterating blood pressure readings: %w", err)
	}

	return readings, nil
}

// SaveMeditation saves a meditation session
func (r *HealthDataRepository) SaveMeditation(ctx context.Context, session *model.MeditationLog) error {
	query := `
		INSERT INTO meditation_logs (id, user_id, practiced_at, duration_min, kind)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.PracticedAt,
		numberColumn(session.DurationMin),
		session.Kind,
	)

	if err != nil {
		r.logger.Error("failed to save meditation session",
			zap.Error(err),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("failed to save meditation session: %w", err)
	}

	return nil
}

// GetMeditationInRange retrieves meditation sessions practiced within [start, end]
func (r *HealthDataRepository) GetMeditationInRange(ctx context.Context, userID string, start, end int64) ([]model.MeditationLog, error) {
	query := `
		SELECT id, user_id, practiced_at, duration_min, kind
		FROM meditation_logs
		WHERE user_id = $1 AND practiced_at BETWEEN $2 AND $3
		ORDER BY practiced_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get meditation sessions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get meditation sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.MeditationLog{}
	for rows.Next() {
		var session model.MeditationLog
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.PracticedAt,
			&session.DurationMin,
			&session.Kind,
		)
		if err != nil {
			r.logger.Error("failed to scan meditation session", zap.Error(err))
			continue
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating meditation sessions", zap.Error(err))
		return nil, fmt.Errorf("error iterating meditation sessions: %w", err)
	}

	return sessions, nil
}
