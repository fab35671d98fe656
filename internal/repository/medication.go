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

// MedicationRepository manages medications, supplements, their schedules and dose logs
type MedicationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicationRepository creates a new MedicationRepository
func NewMedicationRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicationRepository {
	return &MedicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new medication or supplement record
func (r *MedicationRepository) Create(ctx context.Context, med *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, user_id, kind, name, dosage,
			active, started_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		med.ID,
		med.UserID,
		med.Kind,
		med.Name,
		med.Dosage,
		med.Active,
		med.StartedAt,
	)

	if err != nil {
		r.logger.Error("failed to create medication",
			zap.Error(err),
			zap.String("medication_id", med.ID),
			zap.String("user_id", med.UserID),
		)
		return fmt.Errorf("failed to create medication: %w", err)
	}

	return nil
}

// FindByUserID retrieves all medications and supplements for a user, sorted by name
func (r *MedicationRepository) FindByUserID(ctx context.Context, userID string) ([]model.Medication, error) {
	query := `
		SELECT id, user_id, kind, name, dosage, active, started_at
		FROM medications
		WHERE user_id = $1
		ORDER BY kind, name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to find medications", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find medications: %w", err)
	}
	defer rows.Close()

	medications := []model.Medication{}
	for rows.Next() {
		var med model.Medication
		err := rows.Scan(
			&med.ID,
			&med.UserID,
			&med.Kind,
			&med.Name,
			&med.Dosage,
			&med.Active,
			&med.StartedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan medication", zap.Error(err))
			continue
		}
		medications = append(medications, med)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medications", zap.Error(err))
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return medications, nil
}

// FindByID retrieves a medication by ID
func (r *MedicationRepository) FindByID(ctx context.Context, medicationID string) (*model.Medication, error) {
	query := `
		SELECT id, user_id, kind, name, dosage, active, started_at
		FROM medications
		WHERE id = $1
	`

	var med model.Medication
	err := r.db.QueryRow(ctx, query, medicationID).Scan(
		&med.ID,
		&med.UserID,
		&med.Kind,
		&med.Name,
		&med.Dosage,
		&med.Active,
		&med.StartedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
		}
		r.logger.Error("failed to find medication", zap.Error(err), zap.String("medication_id", medicationID))
		return nil, fmt.Errorf("failed to find medication: %w", err)
	}

	return &med, nil
}

// CreateSchedule stores a dose schedule for a medication or supplement
func (r *MedicationRepository) CreateSchedule(ctx context.Context, schedule *model.DoseSchedule) error {
	days, err := listColumn(schedule.DaysOfWeek)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dose_schedules (id, parent_kind, parent_id, time_of_day, days_of_week, dosage_override)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.Exec(ctx, query,
		schedule.ID,
		schedule.ParentKind,
		schedule.ParentID,
		schedule.TimeOfDay,
		days,
		schedule.DosageOverride,
	)

	if err != nil {
		r.logger.Error("failed to create dose schedule",
			zap.Error(err),
			zap.String("parent_id", schedule.ParentID),
		)
		return fmt.Errorf("failed to create dose schedule: %w", err)
	}

	return nil
}

// GetSchedulesByUserID retrieves the dose schedules of every item the user tracks
func (r *MedicationRepository) GetSchedulesByUserID(ctx context.Context, userID string) ([]model.DoseSchedule, error) {
	query := `
		SELECT s.id, s.parent_kind, s.parent_id, s.time_of_day, s.days_of_week, s.dosage_override
		FROM dose_schedules s
		JOIN medications m ON m.id = s.parent_id
		WHERE m.user_id = $1
		ORDER BY s.time_of_day
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get dose schedules", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get dose schedules: %w", err)
	}
	defer rows.Close()

	schedules := []model.DoseSchedule{}
	for rows.Next() {
		var s model.DoseSchedule
		err := rows.Scan(
			&s.ID,
			&s.ParentKind,
			&s.ParentID,
			&s.TimeOfDay,
			&s.DaysOfWeek,
			&s.DosageOverride,
		)
		if err != nil {
			r.logger.Error("failed to scan dose schedule", zap.Error(err))
			continue
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating dose schedules", zap.Error(err))
		return nil, fmt.Errorf("error iterating dose schedules: %w", err)
	}

	return schedules, nil
}

// LogDose records one taken dose
func (r *MedicationRepository) LogDose(ctx context.Context, log *model.MedicationLog) error {
	query := `
		INSERT INTO medication_logs (id, user_id, medication_id, kind, name, dosage, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		log.ID,
		log.UserID,
		log.MedicationID,
		log.Kind,
		log.Name,
		log.Dosage,
		log.TakenAt,
	)

	if err != nil {
		r.logger.Error("failed to log dose",
			zap.Error(err),
			zap.String("user_id", log.UserID),
			zap.String("name", log.Name),
		)
		return fmt.Errorf("failed to log dose: %w", err)
	}

	return nil
}

// GetLogsInRange retrieves doses taken within [start, end], newest first
func (r *MedicationRepository) GetLogsInRange(ctx context.Context, userID string, start, end int64) ([]model.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, kind, name, dosage, taken_at
		FROM medication_logs
		WHERE user_id = $1 AND taken_at BETWEEN $2 AND $3
		ORDER BY taken_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to get medication logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get medication logs: %w", err)
	}
	defer rows.Close()

	logs := []model.MedicationLog{}
	for rows.Next() {
		var log model.MedicationLog
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.MedicationID,
			&log.Kind,
			&log.Name,
			&log.Dosage,
			&log.TakenAt,
		)
		if err != nil {
			r.logger.Error("failed to scan medication log", zap.Error(err))
			continue
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medication logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating medication logs: %w", err)
	}

	return logs, nil
}
