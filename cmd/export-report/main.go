// Command export-report prints a user's clinician summary or medical report, or writes it as PDF.
//
//	export-report -user 3f1c5a8e-8d2b-4c1e-9a57-2f4b6d0e1c93 -kind summary -start 2026-05-01 -end 2026-05-31
//	export-report -user 3f1c5a8e-8d2b-4c1e-9a57-2f4b6d0e1c93 -kind report -format pdf -out report.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/wellness-tracker/internal/audit"
	"github.com/vcscsvcscs/wellness-tracker/internal/config"
	"github.com/vcscsvcscs/wellness-tracker/internal/normalize"
	"github.com/vcscsvcscs/wellness-tracker/internal/pdf"
	"github.com/vcscsvcscs/wellness-tracker/internal/report"
	"github.com/vcscsvcscs/wellness-tracker/internal/repository"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

type options struct {
	userID string
	start  string
	end    string
	kind   string
	format string
	out    string
}

func main() {
	var opts options
	flag.StringVar(&opts.userID, "user", "", "user ID (required)")
	flag.StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD (default: 29 days before end)")
	flag.StringVar(&opts.end, "end", "", "last day, YYYY-MM-DD (default: today)")
	flag.StringVar(&opts.kind, "kind", "summary", "summary or report")
	flag.StringVar(&opts.format, "format", "text", "text or pdf")
	flag.StringVar(&opts.out, "out", "", "output file (default: stdout for text, <kind>.pdf for pdf)")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "export-report: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.userID == "" {
		return errors.New("-user is required")
	}
	if _, err := uuid.Parse(opts.userID); err != nil {
		return fmt.Errorf("-user must be a UUID: %w", err)
	}
	if opts.kind != "summary" && opts.kind != "report" {
		return fmt.Errorf("-kind must be summary or report, got %q", opts.kind)
	}
	if opts.format != "text" && opts.format != "pdf" {
		return fmt.Errorf("-format must be text or pdf, got %q", opts.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := config.NewLogger(cfg.Server, cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	loc, _ := cfg.Analytics.Location()
	time.Local = loc

	r, err := parseRange(opts.start, opts.end, time.Now())
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	episodeRepo := repository.NewEpisodeRepository(pool, logger)
	summaryService := service.NewSummaryService(
		episodeRepo,
		repository.NewHealthDataRepository(pool, logger),
		repository.NewMedicationRepository(pool, logger),
		logger,
	)
	reportService := service.NewReportService(episodeRepo, summaryService, pdf.NewPDFGenerator(logger), logger)

	logger.Info("exporting",
		zap.String("user_id", opts.userID),
		zap.String("kind", opts.kind),
		zap.String("format", opts.format),
		zap.Time("start", r.Start),
		zap.Time("end", r.End),
	)

	var out []byte
	var reportID *string
	switch {
	case opts.kind == "summary" && opts.format == "text":
		text, err := summaryService.DoctorSummaryText(ctx, opts.userID, r.Start, r.End)
		if err != nil {
			return err
		}
		out = []byte(text)
	case opts.kind == "summary":
		out, err = reportService.DoctorSummaryPDF(ctx, opts.userID, r)
		if err != nil {
			return err
		}
	case opts.format == "text":
		rep, err := reportService.GenerateMedicalReport(ctx, opts.userID, r)
		if err != nil {
			return err
		}
		out = []byte(rep.Text)
		reportID = &rep.ID
	default:
		rep, pdfBytes, err := reportService.MedicalReportPDF(ctx, opts.userID, r)
		if err != nil {
			return err
		}
		out = pdfBytes
		reportID = &rep.ID
	}

	kind := audit.ExportDoctorSummary
	if opts.kind == "report" {
		kind = audit.ExportMedicalReport
	}
	if err := audit.NewLogger(pool, logger).RecordExport(ctx, audit.Export{
		UserID:     opts.userID,
		Kind:       kind,
		Format:     opts.format,
		ReportID:   reportID,
		RangeStart: r.Start.UnixMilli(),
		RangeEnd:   r.End.UnixMilli(),
		UserAgent:  "export-report",
	}); err != nil {
		return err
	}

	dest := opts.out
	if dest == "" && opts.format == "pdf" {
		dest = opts.kind + ".pdf"
	}
	if dest == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	logger.Info("export written", zap.String("path", dest), zap.Int("bytes", len(out)))
	return nil
}

// parseRange resolves inclusive calendar days into an epoch range ending one
// millisecond before the day after end.
func parseRange(start, end string, now time.Time) (report.DateRange, error) {
	endDay := normalize.StartOfDay(now.In(time.Local))
	if end != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, end, time.Local)
		if err != nil {
			return report.DateRange{}, fmt.Errorf("-end must be YYYY-MM-DD: %w", err)
		}
		endDay = parsed
	}

	startDay := endDay.AddDate(0, 0, -29)
	if start != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, start, time.Local)
		if err != nil {
			return report.DateRange{}, fmt.Errorf("-start must be YYYY-MM-DD: %w", err)
		}
		startDay = parsed
	}

	if endDay.Before(startDay) {
		return report.DateRange{}, errors.New("-start must not be after -end")
	}
	return report.DateRange{Start: startDay, End: endDay.AddDate(0, 0, 1).Add(-time.Millisecond)}, nil
}
