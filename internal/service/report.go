package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/wellness-tracker/internal/pdf"
	"github.com/vcscsvcscs/wellness-tracker/internal/report"
	"go.uber.org/zap"
)

const (
	medicalReportTitle    = "Migraine Clinical Report"
	doctorSummaryTitle    = "Migraine Summary for Clinician"
	reportPeriodLayout    = "Jan 2, 2006"
	reportPeriodSeparator = " - "
)

// PDFRenderer renders a text document as PDF
type PDFRenderer interface {
	Generate(doc *pdf.Document) ([]byte, error)
}

// MedicalReport is a generated clinical report
type MedicalReport struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"user_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Analysis    report.MigraineAnalysis `json:"analysis"`
	Text        string                  `json:"text"`
}

// ReportService manages medical report generation
type ReportService struct {
	episodes EpisodeRepositoryInterface
	summary  *SummaryService
	pdfGen   PDFRenderer
	now      func() time.Time
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	episodes EpisodeRepositoryInterface,
	summary *SummaryService,
	pdfGen PDFRenderer,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		episodes: episodes,
		summary:  summary,
		pdfGen:   pdfGen,
		now:      time.Now,
		logger:   logger,
	}
}

// GenerateMedicalReport analyzes the episodes started in r and renders the text report.
// Chronic status and overuse always cover the 30 days before now, whatever r is.
func (s *ReportService) GenerateMedicalReport(ctx context.Context, userID string, r report.DateRange) (*MedicalReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("invalid range: end is before start")
	}

	reportID := uuid.New().String()
	s.logger.Info("generating medical report",
		zap.String("report_id", reportID),
		zap.String("user_id", userID),
		zap.Time("start", r.Start),
		zap.Time("end", r.End),
	)

	episodes, err := s.episodes.FindByUserIDInRange(ctx, userID, r.Start.UnixMilli(), r.End.UnixMilli())
	if err != nil {
		s.logger.Error("failed to get episodes for report",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get episodes: %w", err)
	}

	now := s.now()
	analysis := report.AnalyzeMigraineDataAt(episodes, now)
	text := report.GenerateMedicalReport(analysis, episodes, r)

	s.logger.Info("medical report generated",
		zap.String("report_id", reportID),
		zap.String("user_id", userID),
		zap.Int("episodes", analysis.TotalEpisodes),
		zap.String("chronic_status", string(analysis.ChronicStatus)),
	)

	return &MedicalReport{
		ID:          reportID,
		UserID:      userID,
		GeneratedAt: now,
		Analysis:    analysis,
		Text:        text,
	}, nil
}

// MedicalReportPDF renders the medical report as PDF
func (s *ReportService) MedicalReportPDF(ctx context.Context, userID string, r report.DateRange) (*MedicalReport, []byte, error) {
	rep, err := s.GenerateMedicalReport(ctx, userID, r)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.render(medicalReportTitle, userID, r, rep.GeneratedAt, rep.Text)
	if err != nil {
		return nil, nil, err
	}
	return rep, out, nil
}

// DoctorSummaryPDF renders the clinician summary as PDF
func (s *ReportService) DoctorSummaryPDF(ctx context.Context, userID string, r report.DateRange) ([]byte, error) {
	text, err := s.summary.DoctorSummaryText(ctx, userID, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	return s.render(doctorSummaryTitle, userID, r, s.now(), text)
}

func (s *ReportService) render(title, userID string, r report.DateRange, generatedAt time.Time, body string) ([]byte, error) {
	out, err := s.pdfGen.Generate(&pdf.Document{
		Title:       title,
		UserID:      userID,
		Period:      r.Start.Format(reportPeriodLayout) + reportPeriodSeparator + r.End.Format(reportPeriodLayout),
		GeneratedAt: generatedAt,
		Body:        body,
	})
	if err != nil {
		s.logger.Error("failed to render PDF",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("title", title),
		)
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return out, nil
}
