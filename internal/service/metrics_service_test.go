package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scan-registration/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/health", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/scan", 200, 30*time.Millisecond)
	m.ObserveStoreCall("find_student", 4*time.Millisecond)
	m.RecordRegistration(string(models.ScanStatusRegistered), models.ScanTypeBarcode)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.01)
	assert.Equal(t, uint64(1), snap.StoreCallCount)
	assert.Equal(t, uint64(1), snap.RegistrationsTotal)
}

func TestMetricsServiceHandlerExposesRegistrations(t *testing.T) {
	m := NewMetricsService()
	m.RecordRegistration(string(models.ScanStatusNotFound), models.ScanTypeManual)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `registrations_total{outcome="not_found",scan_type="manual"} 1`))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordRegistration("registered", models.ScanTypeBarcode)
	m.ObserveStoreCall("append_scan_log", time.Millisecond)
	assert.Equal(t, models.MetricsSnapshot{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
