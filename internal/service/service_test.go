package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/migraine"
	"github.com/vcscsvcscs/wellness-tracker/internal/pdf"
	"github.com/vcscsvcscs/wellness-tracker/internal/report"
	"github.com/vcscsvcscs/wellness-tracker/pkg/model"
	"go.uber.org/zap"
)

// MockEpisodeRepository is a mock implementation of EpisodeRepositoryInterface
type MockEpisodeRepository struct {
	mock.Mock
}

func (m *MockEpisodeRepository) FindByUserIDInRange(ctx context.Context, userID string, start, end int64) ([]model.Episode, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Episode), args.Error(1)
}

// MockHealthDataRepository is a mock implementation of HealthDataRepositoryInterface
type MockHealthDataRepository struct {
	mock.Mock
}

func (m *MockHealthDataRepository) GetBloodPressureInRange(ctx context.Context, userID string, start, end int64) ([]model.BloodPressureReading, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BloodPressureReading), args.Error(1)
}

func (m *MockHealthDataRepository) GetMeditationInRange(ctx context.Context, userID string, start, end int64) ([]model.MeditationLog, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MeditationLog), args.Error(1)
}

// MockMedicationRepository is a mock implementation of MedicationRepositoryInterface
type MockMedicationRepository struct {
	mock.Mock
}

func (m *MockMedicationRepository) FindByUserID(ctx context.Context, userID string) ([]model.Medication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medication), args.Error(1)
}

func (m *MockMedicationRepository) GetSchedulesByUserID(ctx context.Context, userID string) ([]model.DoseSchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DoseSchedule), args.Error(1)
}

func (m *MockMedicationRepository) GetLogsInRange(ctx context.Context, userID string, start, end int64) ([]model.MedicationLog, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationLog), args.Error(1)
}

// MockPDFRenderer is a mock implementation of PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Generate(doc *pdf.Document) ([]byte, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	rangeStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
)

func episodeOn(day, severity int) model.Episode {
	start := time.Date(2026, 6, day, 9, 0, 0, 0, time.UTC).UnixMilli()
	end := start + 4*60*60*1000
	return model.Episode{
		ID:        "ep-" + time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC).Format("0102"),
		UserID:    "user-1",
		StartedAt: start,
		EndedAt:   &end,
		Severity:  severity,
		Triggers:  []string{"stress"},
	}
}

func newSummaryMocks() (*MockEpisodeRepository, *MockHealthDataRepository, *MockMedicationRepository) {
	return new(MockEpisodeRepository), new(MockHealthDataRepository), new(MockMedicationRepository)
}

func expectEmptySupportingData(health *MockHealthDataRepository, meds *MockMedicationRepository, userID string) {
	health.On("GetBloodPressureInRange", mock.Anything, userID, rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return([]model.BloodPressureReading{}, nil)
	health.On("GetMeditationInRange", mock.Anything, userID, rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return([]model.MeditationLog{}, nil)
	meds.On("FindByUserID", mock.Anything, userID).Return([]model.Medication{}, nil)
	meds.On("GetSchedulesByUserID", mock.Anything, userID).Return([]model.DoseSchedule{}, nil)
	meds.On("GetLogsInRange", mock.Anything, userID, rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return([]model.MedicationLog{}, nil)
}

func TestSummaryService_DoctorSummary_Success(t *testing.T) {
	// Arrange
	episodes, health, meds := newSummaryMocks()
	service := NewSummaryService(episodes, health, meds, zap.NewNop())
	ctx := context.Background()

	var eps []model.Episode
	for day := 1; day <= 15; day++ {
		eps = append(eps, episodeOn(day, 7))
	}
	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return(eps, nil)
	expectEmptySupportingData(health, meds, "user-1")

	// Act
	summary, err := service.DoctorSummary(ctx, "user-1", rangeStart, rangeEnd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, migraine.ClassificationChronic, summary.Classification.Type)
	assert.Equal(t, 15, summary.MigraineStats.TotalEpisodes)
	assert.Equal(t, 30, summary.WindowDays)
	episodes.AssertExpectations(t)
	health.AssertExpectations(t)
	meds.AssertExpectations(t)
}

func TestSummaryService_DoctorSummary_RepositoryError(t *testing.T) {
	// Arrange
	episodes, health, meds := newSummaryMocks()
	service := NewSummaryService(episodes, health, meds, zap.NewNop())

	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return([]model.Episode{}, nil).Maybe()
	health.On("GetBloodPressureInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	health.On("GetMeditationInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return([]model.MeditationLog{}, nil).Maybe()
	meds.On("FindByUserID", mock.Anything, "user-1").Return([]model.Medication{}, nil).Maybe()
	meds.On("GetSchedulesByUserID", mock.Anything, "user-1").Return([]model.DoseSchedule{}, nil).Maybe()
	meds.On("GetLogsInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return([]model.MedicationLog{}, nil).Maybe()

	// Act
	summary, err := service.DoctorSummary(context.Background(), "user-1", rangeStart, rangeEnd)

	// Assert
	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get blood pressure readings")
}

func TestSummaryService_DoctorSummary_Validation(t *testing.T) {
	service := NewSummaryService(nil, nil, nil, zap.NewNop())

	_, err := service.DoctorSummary(context.Background(), "", rangeStart, rangeEnd)
	assert.EqualError(t, err, "user ID is required")

	_, err = service.DoctorSummary(context.Background(), "user-1", rangeEnd, rangeStart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

func TestSummaryService_DoctorSummaryText(t *testing.T) {
	episodes, health, meds := newSummaryMocks()
	service := NewSummaryService(episodes, health, meds, zap.NewNop())

	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return([]model.Episode{}, nil)
	expectEmptySupportingData(health, meds, "user-1")

	text, err := service.DoctorSummaryText(context.Background(), "user-1", rangeStart, rangeEnd)

	require.NoError(t, err)
	assert.Contains(t, text, "MIGRAINE SUMMARY FOR CLINICIAN")
	assert.Contains(t, text, "Insufficient data")
}

func TestReportService_GenerateMedicalReport_PastRangeMeasuredFromNow(t *testing.T) {
	// Arrange
	episodes := new(MockEpisodeRepository)
	service := NewReportService(episodes, nil, new(MockPDFRenderer), zap.NewNop())
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	january := report.DateRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	var eps []model.Episode
	for day := 1; day <= 16; day++ {
		start := time.Date(2026, 1, day, 9, 0, 0, 0, time.UTC).UnixMilli()
		eps = append(eps, model.Episode{
			ID:        fmt.Sprintf("ep-%02d", day),
			UserID:    "user-1",
			StartedAt: start,
			Severity:  6,
		})
	}
	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", january.Start.UnixMilli(), january.End.UnixMilli()).Return(eps, nil)

	// Act
	rep, err := service.GenerateMedicalReport(context.Background(), "user-1", january)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, 16, rep.Analysis.TotalEpisodes)
	assert.Equal(t, 0, rep.Analysis.HeadacheDaysLast30)
	assert.Equal(t, report.StatusEpisodic, rep.Analysis.ChronicStatus)
	assert.Equal(t, now.UnixMilli(), rep.Analysis.GeneratedAt)
	assert.True(t, now.Equal(rep.GeneratedAt))
	assert.NotContains(t, rep.Text, "Jan 31, 2026 23:59")
	assert.NotContains(t, rep.Text, "CHRONIC MIGRAINE PATTERN")
	episodes.AssertExpectations(t)
}

func TestReportService_GenerateMedicalReport_RecentEpisodesCountTowardStatus(t *testing.T) {
	episodes := new(MockEpisodeRepository)
	service := NewReportService(episodes, nil, new(MockPDFRenderer), zap.NewNop())
	service.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	eps := []model.Episode{episodeOn(10, 6), episodeOn(20, 8)}
	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return(eps, nil)

	rep, err := service.GenerateMedicalReport(context.Background(), "user-1", report.DateRange{Start: rangeStart, End: rangeEnd})

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Analysis.HeadacheDaysLast30)
	assert.Contains(t, rep.Text, "MIGRAINE CLINICAL REPORT")
}

func TestReportService_GenerateMedicalReport_FutureEndUsesNow(t *testing.T) {
	episodes := new(MockEpisodeRepository)
	service := NewReportService(episodes, nil, new(MockPDFRenderer), zap.NewNop())
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return([]model.Episode{}, nil)

	rep, err := service.GenerateMedicalReport(context.Background(), "user-1", report.DateRange{Start: rangeStart, End: rangeEnd})

	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), rep.Analysis.GeneratedAt)
	assert.Equal(t, report.StatusEpisodic, rep.Analysis.ChronicStatus)
}

func TestReportService_MedicalReportPDF(t *testing.T) {
	// Arrange
	episodes := new(MockEpisodeRepository)
	renderer := new(MockPDFRenderer)
	service := NewReportService(episodes, nil, renderer, zap.NewNop())

	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", mock.Anything, mock.Anything).Return([]model.Episode{episodeOn(3, 5)}, nil)
	renderer.On("Generate", mock.MatchedBy(func(doc *pdf.Document) bool {
		return doc.Title == medicalReportTitle &&
			doc.UserID == "user-1" &&
			doc.Period == "Jun 1, 2026 - Jun 30, 2026"
	})).Return([]byte("%PDF-1.3"), nil)

	// Act
	rep, out, err := service.MedicalReportPDF(context.Background(), "user-1", report.DateRange{Start: rangeStart, End: rangeEnd})

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, rep)
	assert.Equal(t, []byte("%PDF-1.3"), out)
	renderer.AssertExpectations(t)
}

func TestReportService_DoctorSummaryPDF_RenderError(t *testing.T) {
	episodes, health, meds := newSummaryMocks()
	renderer := new(MockPDFRenderer)
	summary := NewSummaryService(episodes, health, meds, zap.NewNop())
	service := NewReportService(episodes, summary, renderer, zap.NewNop())

	episodes.On("FindByUserIDInRange", mock.Anything, "user-1", rangeStart.UnixMilli(), rangeEnd.UnixMilli()).Return([]model.Episode{}, nil)
	expectEmptySupportingData(health, meds, "user-1")
	renderer.On("Generate", mock.Anything).Return(nil, errors.New("font missing"))

	out, err := service.DoctorSummaryPDF(context.Background(), "user-1", report.DateRange{Start: rangeStart, End: rangeEnd})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render PDF")
}

// MockTransformationStore is a mock implementation of adherence.Store
type MockTransformationStore struct {
	mock.Mock
}

func (m *MockTransformationStore) GetWorkoutLogs(ctx context.Context, userID string, start, end int64) ([]model.WorkoutLog, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.WorkoutLog), args.Error(1)
}

func (m *MockTransformationStore) GetMealPlanLogs(ctx context.Context, userID string, start, end int64) ([]model.MealPlanLog, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.MealPlanLog), args.Error(1)
}

func (m *MockTransformationStore) GetRoutineChecklists(ctx context.Context, userID string, start, end int64) ([]model.RoutineChecklist, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.RoutineChecklist), args.Error(1)
}

func (m *MockTransformationStore) GetWeeklyCheckins(ctx context.Context, userID string, start, end int64) ([]model.WeeklyCheckin, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.WeeklyCheckin), args.Error(1)
}

func (m *MockTransformationStore) GetTransformationGoal(ctx context.Context, userID string) (*model.TransformationGoal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransformationGoal), args.Error(1)
}

func TestAdherenceService_TransformationScore_DefaultsToCurrentWeek(t *testing.T) {
	// Arrange
	store := new(MockTransformationStore)
	now := time.Date(2026, 7, 15, 18, 0, 0, 0, time.Local)
	engine := adherence.NewEngine(store, adherence.Options{WorkoutWeeklyTarget: 5, DefaultProteinMinGrams: 140}, zap.NewNop()).
		WithClock(func() time.Time { return now })
	service := NewAdherenceService(engine, new(MockMedicationRepository), zap.NewNop())

	week := adherence.CurrentWeek(now)
	start, end := week.Start.UnixMilli(), week.End.UnixMilli()
	store.On("GetWorkoutLogs", mock.Anything, "user-1", start, end).Return([]model.WorkoutLog{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}, {ID: "w4"}, {ID: "w5"}}, nil)
	store.On("GetMealPlanLogs", mock.Anything, "user-1", start, end).Return([]model.MealPlanLog{}, nil)
	store.On("GetTransformationGoal", mock.Anything, "user-1").Return(nil, nil)
	store.On("GetRoutineChecklists", mock.Anything, "user-1", start, end).Return([]model.RoutineChecklist{}, nil)
	store.On("GetWeeklyCheckins", mock.Anything, "user-1", start, end).Return([]model.WeeklyCheckin{{ID: "c1", CheckedAt: start}}, nil)

	// Act
	result, err := service.TransformationScore(context.Background(), "user-1", adherence.Window{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, week, result.Window)
	assert.Equal(t, 100.0, result.Score.WorkoutPct)
	assert.Equal(t, 100.0, result.Score.CheckinPct)
	assert.Equal(t, 40, result.Score.Score)
}

func TestAdherenceService_ItemAdherence(t *testing.T) {
	// Arrange
	meds := new(MockMedicationRepository)
	now := time.Date(2026, 7, 15, 20, 0, 0, 0, time.Local)
	engine := adherence.NewEngine(new(MockTransformationStore), adherence.Options{}, zap.NewNop()).
		WithClock(func() time.Time { return now })
	service := NewAdherenceService(engine, meds, zap.NewNop())

	day := func(back int) int64 { return now.AddDate(0, 0, -back).UnixMilli() }
	items := []model.Medication{
		{ID: "m1", Kind: model.MedicationKindSupplement, Name: "Magnesium", Active: true, StartedAt: day(3)},
		{ID: "m2", Kind: model.MedicationKindMedication, Name: "Propranolol", Active: false, StartedAt: day(30)},
	}
	id := "m1"
	logs := []model.MedicationLog{
		{ID: "l1", MedicationID: &id, Kind: model.MedicationKindSupplement, Name: "Magnesium", TakenAt: day(1)},
		{ID: "l2", MedicationID: &id, Kind: model.MedicationKindSupplement, Name: "Magnesium", TakenAt: day(0)},
	}
	meds.On("FindByUserID", mock.Anything, "user-1").Return(items, nil)
	meds.On("GetLogsInRange", mock.Anything, "user-1", time.Date(2026, 7, 12, 0, 0, 0, 0, time.Local).UnixMilli(), now.UnixMilli()).Return(logs, nil)

	// Act
	result, err := service.ItemAdherence(context.Background(), "user-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Magnesium", result[0].Name)
	assert.Equal(t, 2, result[0].StreakDays)
	meds.AssertExpectations(t)
}

func TestAdherenceService_ItemAdherence_FetchesFromStartOfFirstDay(t *testing.T) {
	// Arrange
	meds := new(MockMedicationRepository)
	now := time.Date(2026, 7, 15, 20, 0, 0, 0, time.Local)
	engine := adherence.NewEngine(new(MockTransformationStore), adherence.Options{}, zap.NewNop()).
		WithClock(func() time.Time { return now })
	service := NewAdherenceService(engine, meds, zap.NewNop())

	startedAt := time.Date(2026, 7, 12, 20, 0, 0, 0, time.Local)
	startDay := time.Date(2026, 7, 12, 0, 0, 0, 0, time.Local)
	items := []model.Medication{
		{ID: "m1", Kind: model.MedicationKindSupplement, Name: "Magnesium", Active: true, StartedAt: startedAt.UnixMilli()},
	}
	id := "m1"
	logs := []model.MedicationLog{
		// taken on the start day, before the item was registered
		{ID: "l0", MedicationID: &id, Kind: model.MedicationKindSupplement, Name: "Magnesium", TakenAt: time.Date(2026, 7, 12, 8, 0, 0, 0, time.Local).UnixMilli()},
		{ID: "l1", MedicationID: &id, Kind: model.MedicationKindSupplement, Name: "Magnesium", TakenAt: time.Date(2026, 7, 14, 8, 0, 0, 0, time.Local).UnixMilli()},
		{ID: "l2", MedicationID: &id, Kind: model.MedicationKindSupplement, Name: "Magnesium", TakenAt: time.Date(2026, 7, 15, 8, 0, 0, 0, time.Local).UnixMilli()},
	}
	meds.On("FindByUserID", mock.Anything, "user-1").Return(items, nil)
	meds.On("GetLogsInRange", mock.Anything, "user-1", startDay.UnixMilli(), now.UnixMilli()).Return(logs, nil)

	// Act
	result, err := service.ItemAdherence(context.Background(), "user-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 75.0, result[0].AdherencePct)
	assert.Equal(t, 2, result[0].StreakDays)
	meds.AssertExpectations(t)
}

func TestAdherenceService_ItemAdherence_NoActiveItems(t *testing.T) {
	meds := new(MockMedicationRepository)
	engine := adherence.NewEngine(new(MockTransformationStore), adherence.Options{}, zap.NewNop())
	service := NewAdherenceService(engine, meds, zap.NewNop())

	meds.On("FindByUserID", mock.Anything, "user-1").Return([]model.Medication{}, nil)

	result, err := service.ItemAdherence(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, result)
	meds.AssertNotCalled(t, "GetLogsInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
