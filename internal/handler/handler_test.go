package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/audit"
	"github.com/vcscsvcscs/wellness-tracker/internal/metrics"
	"github.com/vcscsvcscs/wellness-tracker/internal/migraine"
	"github.com/vcscsvcscs/wellness-tracker/internal/report"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

type MockSummaryProvider struct {
	mock.Mock
}

func (m *MockSummaryProvider) DoctorSummary(ctx context.Context, userID string, start, end time.Time) (*migraine.DoctorSummary, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migraine.DoctorSummary), args.Error(1)
}

func (m *MockSummaryProvider) DoctorSummaryText(ctx context.Context, userID string, start, end time.Time) (string, error) {
	args := m.Called(ctx, userID, start, end)
	return args.String(0), args.Error(1)
}

type MockReportProvider struct {
	mock.Mock
}

func (m *MockReportProvider) GenerateMedicalReport(ctx context.Context, userID string, r report.DateRange) (*service.MedicalReport, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MedicalReport), args.Error(1)
}

func (m *MockReportProvider) MedicalReportPDF(ctx context.Context, userID string, r report.DateRange) (*service.MedicalReport, []byte, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.MedicalReport), args.Get(1).([]byte), args.Error(2)
}

func (m *MockReportProvider) DoctorSummaryPDF(ctx context.Context, userID string, r report.DateRange) ([]byte, error) {
	args := m.Called(ctx, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAdherenceProvider struct {
	mock.Mock
}

func (m *MockAdherenceProvider) TransformationScore(ctx context.Context, userID string, w adherence.Window) (*service.TransformationReport, error) {
	args := m.Called(ctx, userID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransformationReport), args.Error(1)
}

func (m *MockAdherenceProvider) ItemAdherence(ctx context.Context, userID string) ([]adherence.ItemAdherence, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]adherence.ItemAdherence), args.Error(1)
}

type fakeAuditor struct {
	entries []audit.Export
	err     error
}

func (a *fakeAuditor) RecordExport(_ context.Context, entry audit.Export) error {
	a.entries = append(a.entries, entry)
	return a.err
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

const testUserID = "3f1c5a8e-8d2b-4c1e-9a57-2f4b6d0e1c93"

var fixedNow = time.Date(2026, 6, 30, 15, 0, 0, 0, time.Local)

type testServer struct {
	router    *gin.Engine
	summaries *MockSummaryProvider
	reports   *MockReportProvider
	adherence *MockAdherenceProvider
	auditor   *fakeAuditor
}

func newTestServer(pingErr error) *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		router:    gin.New(),
		summaries: new(MockSummaryProvider),
		reports:   new(MockReportProvider),
		adherence: new(MockAdherenceProvider),
		auditor:   &fakeAuditor{},
	}

	m := metrics.New()
	logger := zap.NewNop()
	mh := NewMigraineHandler(s.summaries, s.reports, s.auditor, m, logger)
	mh.now = func() time.Time { return fixedNow }
	ah := NewAdherenceHandler(s.adherence, m, logger)
	ah.now = func() time.Time { return fixedNow }

	RegisterRoutes(s.router, Handlers{
		Health:    NewHealthHandler(fakePinger{err: pingErr}, "test", logger),
		Migraine:  mh,
		Adherence: ah,
		Metrics:   m.Handler(),
	})
	return s
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func endOf(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func TestGetHealth(t *testing.T) {
	w := newTestServer(nil).get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = newTestServer(errors.New("dial tcp: refused")).get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "disconnected")
}

func TestGetSummary_DefaultWindowIsTrailing30Days(t *testing.T) {
	// Arrange
	s := newTestServer(nil)
	start, end := day(2026, 6, 1), endOf(day(2026, 6, 30))
	summary := &migraine.DoctorSummary{
		WindowDays:     30,
		Classification: migraine.Classification{Type: migraine.ClassificationEpisodic},
	}
	s.summaries.On("DoctorSummary", mock.Anything, testUserID, start, end).Return(summary, nil)

	// Act
	w := s.get("/api/v1/users/" + testUserID + "/migraine/summary")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var body migraine.DoctorSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, migraine.ClassificationEpisodic, body.Classification.Type)
	s.summaries.AssertExpectations(t)

	require.Len(t, s.auditor.entries, 1)
	entry := s.auditor.entries[0]
	assert.Equal(t, audit.ExportDoctorSummary, entry.Kind)
	assert.Equal(t, "json", entry.Format)
	assert.Equal(t, testUserID, entry.UserID)
	assert.Equal(t, start.UnixMilli(), entry.RangeStart)
	assert.Equal(t, end.UnixMilli(), entry.RangeEnd)

	metricsBody := s.get("/metrics").Body.String()
	assert.Contains(t, metricsBody, `wellness_migraine_classifications_total{type="episodic"} 1`)
}

func TestGetSummary_TextFormatWithExplicitRange(t *testing.T) {
	s := newTestServer(nil)
	start, end := day(2026, 5, 1), endOf(day(2026, 5, 31))
	s.summaries.On("DoctorSummaryText", mock.Anything, testUserID, start, end).Return("MIGRAINE SUMMARY FOR CLINICIAN\n", nil)

	w := s.get("/api/v1/users/" + testUserID + "/migraine/summary?format=text&start=2026-05-01&end=2026-05-31")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MIGRAINE SUMMARY FOR CLINICIAN\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestGetSummary_PDF(t *testing.T) {
	s := newTestServer(nil)
	s.reports.On("DoctorSummaryPDF", mock.Anything, testUserID, mock.Anything).Return([]byte("%PDF-1.3"), nil)

	w := s.get("/api/v1/users/" + testUserID + "/migraine/summary?format=pdf")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "migraine-summary-2026-06-01.pdf")
}

func TestGetSummary_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"malformed start", "?start=06/01/2026"},
		{"end before start", "?start=2026-06-10&end=2026-06-01"},
		{"range too long", "?start=2024-01-01&end=2026-01-01"},
		{"unknown format", "?format=xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)

			w := s.get("/api/v1/users/" + testUserID + "/migraine/summary" + tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "VALIDATION_ERROR", resp.Code)
			assert.NotNil(t, resp.Details)
			s.summaries.AssertNotCalled(t, "DoctorSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetSummary_InternalError(t *testing.T) {
	s := newTestServer(nil)
	s.summaries.On("DoctorSummary", mock.Anything, testUserID, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	w := s.get("/api/v1/users/" + testUserID + "/migraine/summary")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
	assert.Equal(t, "db down", *resp.Details)
	assert.Empty(t, s.auditor.entries)
}

func TestInvalidUserID(t *testing.T) {
	s := newTestServer(nil)

	for _, path := range []string{
		"/api/v1/users/not-a-uuid/migraine/summary",
		"/api/v1/users/not-a-uuid/migraine/report",
		"/api/v1/users/not-a-uuid/transformation/score",
		"/api/v1/users/not-a-uuid/adherence",
	} {
		w := s.get(path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR", path)
	}
}

func TestGetSummary_AuditFailureStillServesDocument(t *testing.T) {
	s := newTestServer(nil)
	s.auditor.err = errors.New("audit table missing")
	s.summaries.On("DoctorSummaryText", mock.Anything, testUserID, mock.Anything, mock.Anything).Return("MIGRAINE SUMMARY FOR CLINICIAN\n", nil)

	w := s.get("/api/v1/users/" + testUserID + "/migraine/summary?format=text")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.auditor.entries, 1)
}

func TestGetReport_TextAndJSON(t *testing.T) {
	s := newTestServer(nil)
	rep := &service.MedicalReport{ID: "rep-1", UserID: testUserID, Text: "MIGRAINE CLINICAL REPORT\n"}
	s.reports.On("GenerateMedicalReport", mock.Anything, testUserID, report.DateRange{Start: day(2026, 6, 1), End: endOf(day(2026, 6, 30))}).Return(rep, nil)

	w := s.get("/api/v1/users/" + testUserID + "/migraine/report")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MIGRAINE CLINICAL REPORT\n", w.Body.String())
	assert.Equal(t, "rep-1", w.Header().Get("X-Report-ID"))

	w = s.get("/api/v1/users/" + testUserID + "/migraine/report?format=json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"rep-1"`)

	require.Len(t, s.auditor.entries, 2)
	for _, entry := range s.auditor.entries {
		assert.Equal(t, audit.ExportMedicalReport, entry.Kind)
		require.NotNil(t, entry.ReportID)
		assert.Equal(t, "rep-1", *entry.ReportID)
	}
}

func TestGetReport_PDF(t *testing.T) {
	s := newTestServer(nil)
	rep := &service.MedicalReport{ID: "rep-2"}
	s.reports.On("MedicalReportPDF", mock.Anything, testUserID, mock.Anything).Return(rep, []byte("%PDF-1.3"), nil)

	w := s.get("/api/v1/users/" + testUserID + "/migraine/report?format=pdf")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.3", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "migraine-report-rep-2.pdf")
}

func TestGetTransformationScore(t *testing.T) {
	t.Run("no range uses the service default", func(t *testing.T) {
		s := newTestServer(nil)
		result := &service.TransformationReport{Score: adherence.TransformationScore{Score: 65}}
		s.adherence.On("TransformationScore", mock.Anything, testUserID, adherence.Window{}).Return(result, nil)

		w := s.get("/api/v1/users/" + testUserID + "/transformation/score")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"score":65`)
	})

	t.Run("explicit range", func(t *testing.T) {
		s := newTestServer(nil)
		want := adherence.Window{Start: day(2026, 6, 22), End: endOf(day(2026, 6, 28))}
		s.adherence.On("TransformationScore", mock.Anything, testUserID, want).Return(&service.TransformationReport{Window: want}, nil)

		w := s.get("/api/v1/users/" + testUserID + "/transformation/score?start=2026-06-22&end=2026-06-28")

		assert.Equal(t, http.StatusOK, w.Code)
		s.adherence.AssertExpectations(t)
	})
}

func TestGetAdherence(t *testing.T) {
	s := newTestServer(nil)
	items := []adherence.ItemAdherence{{ItemID: "m1", Name: "Magnesium", StreakDays: 4, AdherencePct: 80}}
	s.adherence.On("ItemAdherence", mock.Anything, testUserID).Return(items, nil)

	w := s.get("/api/v1/users/" + testUserID + "/adherence")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"streak_days":4`)
}
