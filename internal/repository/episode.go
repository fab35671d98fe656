package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
)

// EpisodeRepository manages migraine episodes
type EpisodeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewEpisodeRepository creates a new EpisodeRepository
func NewEpisodeRepository(db *pgxpool.Pool, logger *zap.Logger) *EpisodeRepository {
	return &EpisodeRepository{
		db:     db,
		logger: logger,
	}
}

const episodeColumns = `
	id, user_id, started_at, ended_at,
	severity, aura_present, aura_duration_min, aura_types,
	symptoms, triggers, food_triggers, sleep_relation, sensory_avoidance, functional_impact,
	onset_speed, time_to_peak, abortive_timing, relief, note,
	medication_name, medication_category, medication_timing, medication_relief_2h, medication_taken_at,
	meets_ichd3_criteria, midas_score, midas_grade, sleep_hours, sleep_quality,
	could_not_work, bed_bound_hours`

// Create stores a migraine episode
func (r *EpisodeRepository) Create(ctx context.Context, ep *model.Episode) error {
	lists := make([]*string, 0, 7)
	for _, raw := range []any{ep.AuraTypes, ep.Symptoms, ep.Triggers, ep.FoodTriggers, ep.SleepRelation, ep.SensoryAvoidance, ep.FunctionalImpact} {
		col, err := listColumn(raw)
		if err != nil {
			return err
		}
		lists = append(lists, col)
	}

	med := ep.Medication
	if med == nil {
		med = &model.MedicationUsage{}
	}

	query := `INSERT INTO migraine_episodes (` + episodeColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`

	_, err := r.db.Exec(ctx, query,
		ep.ID, ep.UserID, ep.StartedAt, ep.EndedAt,
		numberColumn(ep.Severity), ep.AuraPresent, numberColumn(ep.AuraDurationMin), lists[0],
		lists[1], lists[2], lists[3], lists[4], lists[5], lists[6],
		ep.OnsetSpeed, ep.TimeToPeak, ep.AbortiveTiming, ep.Relief, ep.Note,
		med.Name, med.Category, med.Timing, med.ReliefAt2, med.TakenAt,
		ep.MeetsICHD3Criteria, numberColumn(ep.MIDASScore), ep.MIDASGrade, numberColumn(ep.SleepHours), ep.SleepQuality,
		ep.CouldNotWork, numberColumn(ep.BedBoundHours),
	)
	if err != nil {
		r.logger.Error("failed to create episode",
			zap.Error(err),
			zap.String("episode_id", ep.ID),
			zap.String("user_id", ep.UserID),
		)
		return fmt.Errorf("failed to create episode: %w", err)
	}

	return nil
}

// FindByUserIDInRange retrieves episodes that started within [start, end], newest first
func (r *EpisodeRepository) FindByUserIDInRange(ctx context.Context, userID string, start, end int64) ([]model.Episode, error) {
	query := `SELECT ` + episodeColumns + `
		FROM migraine_episodes
		WHERE user_id = $1 AND started_at BETWEEN $2 AND $3
		ORDER BY started_at DESC`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		r.logger.Error("failed to find episodes", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find episodes: %w", err)
	}
	defer rows.Close()

	episodes := []model.Episode{}
	for rows.Next() {
		var ep model.Episode
		var med model.MedicationUsage
		err := rows.Scan(
			&ep.ID, &ep.UserID, &ep.StartedAt, &ep.EndedAt,
			&ep.Severity, &ep.AuraPresent, &ep.AuraDurationMin, &ep.AuraTypes,
			&ep.Symptoms, &ep.Triggers, &ep.FoodTriggers, &ep.SleepRelation, &ep.SensoryAvoidance, &ep.FunctionalImpact,
			&ep.OnsetSpeed, &ep.TimeToPeak, &ep.AbortiveTiming, &ep.Relief, &ep.Note,
			&med.Name, &med.Category, &med.Timing, &med.ReliefAt2, &med.TakenAt,
			&ep.MeetsICHD3Criteria, &ep.MIDASScore, &ep.MIDASGrade, &ep.SleepHours, &ep.SleepQuality,
			&ep.CouldNotWork, &ep.BedBoundHours,
		)
		if err != nil {
			r.logger.Error("failed to scan episode", zap.Error(err))
			continue
		}
		if med.Name != nil {
			ep.Medication = &med
		}
		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating episodes", zap.Error(err))
		return nil, fmt.Errorf("error iterating episodes: %w", err)
	}

	return episodes, nil
}
