package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ExportKind names the clinical document that left the system
type ExportKind string

const (
	ExportDoctorSummary ExportKind = "doctor_summary"
	ExportMedicalReport ExportKind = "medical_report"
)

// Export is one audit entry for a generated summary or report
type Export struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Kind       ExportKind `json:"kind"`
	Format     string     `json:"format"`
	ReportID   *string    `json:"report_id,omitempty"`
	RangeStart int64      `json:"range_start"`
	RangeEnd   int64      `json:"range_end"`
	RequestID  string     `json:"request_id,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	ExportedAt time.Time  `json:"exported_at"`
}

// Logger records clinical exports
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// RecordExport writes an export entry, assigning ID and timestamp when missing
func (l *Logger) RecordExport(ctx context.Context, entry Export) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExportedAt.IsZero() {
		entry.ExportedAt = time.Now()
	}

	// Log to structured logger first
	l.logger.Info("Audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("kind", string(entry.Kind)),
		zap.String("format", entry.Format),
		zap.Int64("range_start", entry.RangeStart),
		zap.Int64("range_end", entry.RangeEnd),
		zap.String("request_id", entry.RequestID),
		zap.String("ip_address", entry.IPAddress),
	)

	query := `
		INSERT INTO export_audit_log (
			id, user_id, kind, format, report_id, range_start, range_end,
			request_id, ip_address, user_agent, exported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := l.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Kind,
		entry.Format,
		entry.ReportID,
		entry.RangeStart,
		entry.RangeEnd,
		entry.RequestID,
		entry.IPAddress,
		entry.UserAgent,
		entry.ExportedAt,
	)
	if err != nil {
		l.logger.Error("Failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("kind", string(entry.Kind)),
		)
		return fmt.Errorf("failed to record export: %w", err)
	}

	return nil
}

// Exports returns the most recent export entries of a user, newest first
func (l *Logger) Exports(ctx context.Context, userID string, limit int) ([]Export, error) {
	query := `
		SELECT id, user_id, kind, format, report_id, range_start, range_end,
		       COALESCE(request_id, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), exported_at
		FROM export_audit_log
		WHERE user_id = $1
		ORDER BY exported_at DESC
		LIMIT $2
	`

	rows, err := l.db.Query(ctx, query, userID, limit)
	if err != nil {
		l.logger.Error("failed to query export audit log", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to query export audit log: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Kind,
			&e.Format,
			&e.ReportID,
			&e.RangeStart,
			&e.RangeEnd,
			&e.RequestID,
			&e.IPAddress,
			&e.UserAgent,
			&e.ExportedAt,
		)
		if err != nil {
			l.logger.Error("Failed to scan audit log", zap.Error(err))
			continue
		}
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export audit log: %w", err)
	}

	return exports, nil
}
