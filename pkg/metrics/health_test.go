package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRegistry() {
	registry = newHealthRegistry()
}

func TestRegisterComponentRecordsHealth(t *testing.T) {
	resetRegistry()
	RegisterComponent("wal", true, "running")

	registry.mu.RLock()
	comp := registry.components["wal"]
	registry.mu.RUnlock()

	assert.True(t, comp.healthy)
	assert.Equal(t, "running", comp.message)
}

func TestUpdateComponentOverwritesPriorStatus(t *testing.T) {
	resetRegistry()
	RegisterComponent("wal", true, "ok")
	UpdateComponent("wal", false, "disk full")

	registry.mu.RLock()
	comp := registry.components["wal"]
	registry.mu.RUnlock()

	assert.False(t, comp.healthy)
	assert.Equal(t, "disk full", comp.message)
}

func TestHealthAllHealthy(t *testing.T) {
	resetRegistry()
	SetVersion("1.0.0")
	RegisterComponent("api", true, "")
	RegisterComponent("consensus", true, "")

	h := Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "1.0.0", h.Version)
	assert.Len(t, h.Components, 2)
}

func TestHealthCriticalComponentDownIsUnhealthy(t *testing.T) {
	resetRegistry()
	RegisterComponent("api", true, "")
	RegisterComponent("consensus", false, "not connected")

	h := Health()
	assert.Equal(t, "unhealthy", h.Status)
	assert.Equal(t, "unhealthy: not connected", h.Components["consensus"])
}

func TestHealthNonCriticalComponentDownIsDegradedNotUnhealthy(t *testing.T) {
	resetRegistry()
	RegisterComponent("consensus", true, "")
	RegisterComponent("wal", true, "")
	RegisterComponent("api", true, "")
	RegisterComponent("metrics-exporter", false, "scrape failed")

	h := Health()
	assert.Equal(t, "degraded", h.Status, "a non-critical component failing should not flip overall health to unhealthy")
}

func TestReadinessAllCriticalReady(t *testing.T) {
	resetRegistry()
	RegisterComponent("consensus", true, "")
	RegisterComponent("wal", true, "")
	RegisterComponent("api", true, "")

	r := Readiness()
	assert.Equal(t, "ready", r.Status)
}

func TestReadinessMissingCriticalComponent(t *testing.T) {
	resetRegistry()
	RegisterComponent("api", true, "")
	// consensus and wal never registered

	r := Readiness()
	assert.Equal(t, "not_ready", r.Status)
	assert.NotEmpty(t, r.Message)
}

func TestReadinessCriticalComponentUnhealthy(t *testing.T) {
	resetRegistry()
	RegisterComponent("consensus", false, "leader not elected")
	RegisterComponent("wal", true, "")
	RegisterComponent("api", true, "")

	r := Readiness()
	assert.Equal(t, "not_ready", r.Status)
}

func TestHealthHandlerReturnsOKWhenHealthy(t *testing.T) {
	resetRegistry()
	SetVersion("test")
	RegisterComponent("consensus", true, "")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestHealthHandlerReturns503WhenCriticalComponentDown(t *testing.T) {
	resetRegistry()
	RegisterComponent("consensus", false, "broken")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)
}

func TestReadyHandlerReturnsOKWhenReady(t *testing.T) {
	resetRegistry()
	RegisterComponent("consensus", true, "")
	RegisterComponent("wal", true, "")
	RegisterComponent("api", true, "")

	w := httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ready", body.Status)
}

func TestReadyHandlerReturns503WhenNotReady(t *testing.T) {
	resetRegistry()
	RegisterComponent("api", true, "")

	w := httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLivenessHandlerAlwaysOK(t *testing.T) {
	resetRegistry()

	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "alive", body["status"])
	assert.NotEmpty(t, body["uptime"])
}
