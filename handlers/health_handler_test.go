package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupHealthRouter(svc HealthServiceInterface) *gin.Engine {
	r := gin.New()
	h := NewHealthHandler(svc)
	r.GET("/health", h.DetailedHealth)
	r.GET("/health/liveness", h.LivenessCheck)
	r.HEAD("/health/liveness", h.LivenessCheck)
	r.GET("/health/readiness", h.ReadinessCheck)
	r.HEAD("/health/readiness", h.ReadinessCheck)
	return r
}

func healthWith(storage, chat types.HealthStatus, overall types.HealthStatus) types.HealthCheck {
	return types.HealthCheck{
		Status: overall,
		Components: map[string]types.HealthComponent{
			types.HealthComponentStorage: {Status: storage},
			types.HealthComponentChat:    {Status: chat},
		},
		Version: "1.0.0",
	}
}

func TestLivenessCheck(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			svc := new(MockHealthService)

			w := doRequest(setupHealthRouter(svc), method, "/health/liveness", "")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if method == http.MethodGet {
				assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
			} else {
				assert.Empty(t, w.Body.String())
			}
			svc.AssertNotCalled(t, "CheckHealth", mock.Anything)
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name         string
		health       types.HealthCheck
		expectedCode int
		expectedBody string
	}{
		{
			name:         "up",
			health:       healthWith(types.HealthStatusUp, types.HealthStatusUp, types.HealthStatusUp),
			expectedCode: http.StatusOK,
			expectedBody: `{"status":"UP"}`,
		},
		{
			name:         "chat provider down only degrades",
			health:       healthWith(types.HealthStatusUp, types.HealthStatusDown, types.HealthStatusDegraded),
			expectedCode: http.StatusOK,
			expectedBody: `{"status":"DEGRADED","failing":["chat_provider"]}`,
		},
		{
			name:         "storage down",
			health:       healthWith(types.HealthStatusDown, types.HealthStatusDown, types.HealthStatusDown),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"status":"DOWN","failing":["chat_provider","storage"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("CheckHealth", mock.Anything).Return(tt.health)

			w := doRequest(setupHealthRouter(svc), http.MethodGet, "/health/readiness", "")

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}

	t.Run("head", func(t *testing.T) {
		svc := new(MockHealthService)
		svc.On("CheckHealth", mock.Anything).
			Return(healthWith(types.HealthStatusDown, types.HealthStatusUp, types.HealthStatusDown))

		w := doRequest(setupHealthRouter(svc), http.MethodHead, "/health/readiness", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestDetailedHealth(t *testing.T) {
	svc := new(MockHealthService)
	health := healthWith(types.HealthStatusDown, types.HealthStatusUp, types.HealthStatusDown)
	svc.On("CheckHealth", mock.Anything).Return(health)

	w := doRequest(setupHealthRouter(svc), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, health.Status, got.Status)
	assert.Equal(t, health.Components, got.Components)
	svc.AssertExpectations(t)
}
