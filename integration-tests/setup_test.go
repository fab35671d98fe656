package integration_tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/audit"
	"github.com/vcscsvcscs/wellness-tracker/internal/handler"
	"github.com/vcscsvcscs/wellness-tracker/internal/metrics"
	"github.com/vcscsvcscs/wellness-tracker/internal/middleware"
	"github.com/vcscsvcscs/wellness-tracker/internal/pdf"
	"github.com/vcscsvcscs/wellness-tracker/internal/repository"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

// setupTestDatabase connects to TEST_DATABASE_URL, or starts a PostgreSQL container when
// it is unset, and applies migrations.
func setupTestDatabase(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	var terminate func()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		container, err := postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("wellness_integration"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Should be able to start PostgreSQL container")

		dbURL, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
		terminate = func() {
			if err := container.Terminate(ctx); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}
	}

	require.NoError(t, repository.Migrate(ctx, dbURL, zap.NewNop()), "Should be able to apply migrations")

	db, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "Should be able to connect to database")
	require.NoError(t, db.Ping(ctx), "Should be able to ping database")

	cleanup := func() {
		db.Close()
		if terminate != nil {
			terminate()
		}
	}
	return db, cleanup
}

// testApp is the full HTTP stack over a real database
type testApp struct {
	router         *gin.Engine
	episodes       *repository.EpisodeRepository
	health         *repository.HealthDataRepository
	medications    *repository.MedicationRepository
	transformation *repository.TransformationRepository
	audit          *audit.Logger
}

func newTestApp(db *pgxpool.Pool, now time.Time) *testApp {
	logger := zap.NewNop()
	app := &testApp{
		episodes:       repository.NewEpisodeRepository(db, logger),
		health:         repository.NewHealthDataRepository(db, logger),
		medications:    repository.NewMedicationRepository(db, logger),
		transformation: repository.NewTransformationRepository(db, logger),
		audit:          audit.NewLogger(db, logger),
	}

	engine := adherence.NewEngine(app.transformation, adherence.Options{
		WorkoutWeeklyTarget:    5,
		DefaultProteinMinGrams: 140,
	}, logger).WithClock(func() time.Time { return now })

	summaries := service.NewSummaryService(app.episodes, app.health, app.medications, logger)
	reports := service.NewReportService(app.episodes, summaries, pdf.NewPDFGenerator(logger), logger)
	scores := service.NewAdherenceService(engine, app.medications, logger)
	m := metrics.New()

	gin.SetMode(gin.TestMode)
	app.router = gin.New()
	app.router.Use(middleware.RecoveryMiddleware(logger))
	app.router.Use(middleware.RequestIDMiddleware())
	app.router.Use(m.Middleware())

	handler.RegisterRoutes(app.router, handler.Handlers{
		Health:    handler.NewHealthHandler(db, "integration", logger),
		Migraine:  handler.NewMigraineHandler(summaries, reports, app.audit, m, logger),
		Adherence: handler.NewAdherenceHandler(scores, m, logger),
		Metrics:   m.Handler(),
	})
	return app
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func ptr[T any](v T) *T { return &v }

func at(day int, hour int) int64 {
	return time.Date(2026, 6, day, hour, 0, 0, 0, time.Local).UnixMilli()
}
