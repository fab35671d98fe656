package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/wellness-tracker/internal/audit"
	"github.com/vcscsvcscs/wellness-tracker/internal/middleware"
	"github.com/vcscsvcscs/wellness-tracker/internal/migraine"
	"github.com/vcscsvcscs/wellness-tracker/internal/report"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

// SummaryProvider builds clinician summaries
type SummaryProvider interface {
	DoctorSummary(ctx context.Context, userID string, start, end time.Time) (*migraine.DoctorSummary, error)
	DoctorSummaryText(ctx context.Context, userID string, start, end time.Time) (string, error)
}

// ReportProvider builds medical reports and PDF exports
type ReportProvider interface {
	GenerateMedicalReport(ctx context.Context, userID string, r report.DateRange) (*service.MedicalReport, error)
	MedicalReportPDF(ctx context.Context, userID string, r report.DateRange) (*service.MedicalReport, []byte, error)
	DoctorSummaryPDF(ctx context.Context, userID string, r report.DateRange) ([]byte, error)
}

// ExportAuditor records every summary or report handed out
type ExportAuditor interface {
	RecordExport(ctx context.Context, entry audit.Export) error
}

// MetricsRecorder receives domain counters
type MetricsRecorder interface {
	ReportGenerated(kind, format string)
	Classified(classification string)
	ScoreComputed(score int)
}

// MigraineHandler implements the clinician summary and medical report endpoints
type MigraineHandler struct {
	summaries SummaryProvider
	reports   ReportProvider
	auditor   ExportAuditor
	metrics   MetricsRecorder
	now       func() time.Time
	logger    *zap.Logger
}

// NewMigraineHandler creates a new MigraineHandler
func NewMigraineHandler(
	summaries SummaryProvider,
	reports ReportProvider,
	auditor ExportAuditor,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *MigraineHandler {
	return &MigraineHandler{
		summaries: summaries,
		reports:   reports,
		auditor:   auditor,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger,
	}
}

// GetSummary returns the doctor summary as JSON, text (format=text) or PDF (format=pdf)
func (h *MigraineHandler) GetSummary(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	r, err := parseDateRange(c, h.now())
	if err != nil {
		validationError(c, "Invalid date range", err)
		return
	}
	ctx := c.Request.Context()

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		summary, err := h.summaries.DoctorSummary(ctx, userID, r.Start, r.End)
		if err != nil {
			h.logger.Error("failed to compute doctor summary", zap.Error(err), zap.String("user_id", userID))
			internalError(c, "Failed to compute summary", err)
			return
		}
		h.metrics.Classified(string(summary.Classification.Type))
		h.exported(c, audit.ExportDoctorSummary, format, nil, r)
		c.JSON(http.StatusOK, summary)

	case "text":
		text, err := h.summaries.DoctorSummaryText(ctx, userID, r.Start, r.End)
		if err != nil {
			h.logger.Error("failed to format doctor summary", zap.Error(err), zap.String("user_id", userID))
			internalError(c, "Failed to compute summary", err)
			return
		}
		h.exported(c, audit.ExportDoctorSummary, format, nil, r)
		c.String(http.StatusOK, text)

	case "pdf":
		out, err := h.reports.DoctorSummaryPDF(ctx, userID, report.DateRange{Start: r.Start, End: r.End})
		if err != nil {
			h.logger.Error("failed to render doctor summary PDF", zap.Error(err), zap.String("user_id", userID))
			internalError(c, "Failed to render summary", err)
			return
		}
		h.exported(c, audit.ExportDoctorSummary, format, nil, r)
		sendPDF(c, fmt.Sprintf("migraine-summary-%s.pdf", r.Start.Format(time.DateOnly)), out)

	default:
		validationError(c, "Unsupported format", fmt.Errorf("format must be json, text or pdf, got %q", format))
	}
}

// GetReport returns the medical report as text, JSON (format=json) or PDF (format=pdf)
func (h *MigraineHandler) GetReport(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	r, err := parseDateRange(c, h.now())
	if err != nil {
		validationError(c, "Invalid date range", err)
		return
	}
	ctx := c.Request.Context()
	dr := report.DateRange{Start: r.Start, End: r.End}

	switch format := c.DefaultQuery("format", "text"); format {
	case "text", "json":
		rep, err := h.reports.GenerateMedicalReport(ctx, userID, dr)
		if err != nil {
			h.logger.Error("failed to generate medical report", zap.Error(err), zap.String("user_id", userID))
			internalError(c, "Failed to generate report", err)
			return
		}
		h.exported(c, audit.ExportMedicalReport, format, &rep.ID, r)
		c.Header("X-Report-ID", rep.ID)
		if format == "json" {
			c.JSON(http.StatusOK, rep)
			return
		}
		c.String(http.StatusOK, rep.Text)

	case "pdf":
		rep, out, err := h.reports.MedicalReportPDF(ctx, userID, dr)
		if err != nil {
			h.logger.Error("failed to render medical report PDF", zap.Error(err), zap.String("user_id", userID))
			internalError(c, "Failed to generate report", err)
			return
		}
		h.exported(c, audit.ExportMedicalReport, format, &rep.ID, r)
		c.Header("X-Report-ID", rep.ID)
		sendPDF(c, fmt.Sprintf("migraine-report-%s.pdf", rep.ID), out)

	default:
		validationError(c, "Unsupported format", fmt.Errorf("format must be text, json or pdf, got %q", format))
	}
}

// exported counts the export and writes its audit entry. An audit failure is logged but
// does not withhold the document.
func (h *MigraineHandler) exported(c *gin.Context, kind audit.ExportKind, format string, reportID *string, r dateRange) {
	h.metrics.ReportGenerated(string(kind), format)

	err := h.auditor.RecordExport(c.Request.Context(), audit.Export{
		UserID:     c.Param("userId"),
		Kind:       kind,
		Format:     format,
		ReportID:   reportID,
		RangeStart: r.Start.UnixMilli(),
		RangeEnd:   r.End.UnixMilli(),
		RequestID:  c.GetString(middleware.RequestIDKey),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		h.logger.Error("failed to audit export",
			zap.Error(err),
			zap.String("user_id", c.Param("userId")),
			zap.String("kind", string(kind)),
		)
	}
}

func sendPDF(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
