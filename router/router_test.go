package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	_ "github.com/NomadCrew/nomad-feedback-backend/docs"
	"github.com/NomadCrew/nomad-feedback-backend/handlers"
	"github.com/NomadCrew/nomad-feedback-backend/internal/events"
	"github.com/NomadCrew/nomad-feedback-backend/internal/llm"
	"github.com/NomadCrew/nomad-feedback-backend/internal/store/filestore"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/middleware"
	"github.com/NomadCrew/nomad-feedback-backend/services"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	engine    *gin.Engine
	dataFile  string
	publisher *events.MockPublisher
}

// newTestServer wires the real store and services. geminiURL points the chat
// client at a fake or unreachable provider.
func newTestServer(t *testing.T, geminiURL string) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Environment:    config.EnvDevelopment,
			Port:           "3001",
			BasePath:       "/api",
			AllowedOrigins: []string{"*"},
			Version:        "test",
		},
		Storage: config.StorageConfig{DataFile: filepath.Join(t.TempDir(), "server", "data", "feedback.json")},
		Chat: config.ChatConfig{
			Provider:       config.ChatProviderGemini,
			GeminiAPIKey:   "test-key",
			GeminiModel:    "models/gemini-1.5-flash",
			GeminiBaseURL:  geminiURL,
			TimeoutSeconds: 5,
		},
	}

	reg := prometheus.NewRegistry()
	feedbackStore := filestore.NewFeedbackStore(cfg.Storage.DataFile)
	publisher := events.NewMockPublisher()

	chatClient, err := llm.NewFactory(&cfg.Chat).CreateClient(context.Background())
	require.NoError(t, err)

	feedbackService := services.NewFeedbackService(feedbackStore, publisher, nil, reg)
	chatService := services.NewChatService(chatClient, time.Duration(cfg.Chat.TimeoutSeconds)*time.Second, reg)
	healthService := services.NewHealthService(feedbackStore, nil, cfg.Chat.Provider, llm.IsConfigured(chatClient), cfg.Server.Version)

	engine := SetupRouter(Dependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		ChatHandler:     handlers.NewChatHandler(chatService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		HTTPMetrics:     middleware.NewHTTPMetrics(reg),
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	return &testServer{engine: engine, dataFile: cfg.Storage.DataFile, publisher: publisher}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func listFeedback(t *testing.T, s *testServer) []types.Feedback {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	return items
}

func TestFeedbackLifecycle(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")

	// Listing before anything was stored does not need the file.
	assert.Empty(t, listFeedback(t, s))

	w := s.do(t, http.MethodPost, "/api/feedback", map[string]string{
		"name": "Ann", "email": "a@x.com", "message": "great app", "type": "feature",
		"id": "client-chosen", "status": "resolved", "createdAt": "1999-01-01T00:00:00.000Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, types.FeedbackStatusPending, created.Status)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.NotEqual(t, "1999-01-01T00:00:00.000Z", created.CreatedAt)

	assert.Equal(t, []types.Feedback{created}, listFeedback(t, s), "round trip")

	w = s.do(t, http.MethodPut, "/api/feedback/"+created.ID, map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, types.FeedbackStatusResolved, updated.Status)

	items := listFeedback(t, s)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, types.FeedbackStatusResolved, items[0].Status)

	w = s.do(t, http.MethodDelete, "/api/feedback/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	for _, fb := range listFeedback(t, s) {
		assert.NotEqual(t, created.ID, fb.ID)
	}

	published := s.publisher.Events()
	require.Len(t, published, 3)
	assert.Equal(t, types.EventTypeFeedbackCreated, published[0].Type)
	assert.Equal(t, types.EventTypeFeedbackStatusUpdated, published[1].Type)
	assert.Equal(t, types.EventTypeFeedbackDeleted, published[2].Type)
}

func TestRejectedMutationsLeaveFileUnchanged(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")

	w := s.do(t, http.MethodPost, "/api/feedback", map[string]string{
		"name": "Ann", "email": "a@x.com", "message": "great app", "type": "feature",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	before, err := os.ReadFile(s.dataFile)
	require.NoError(t, err)

	for _, field := range []string{"name", "email", "message", "type"} {
		body := map[string]string{"name": "Bob", "email": "b@x.com", "message": "m", "type": "bug"}
		body[field] = ""
		w := s.do(t, http.MethodPost, "/api/feedback", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Contains(t, w.Body.String(), "All fields are required")
	}

	w = s.do(t, http.MethodPut, "/api/feedback/unknown", map[string]string{"status": "reviewed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Feedback not found")

	// an unknown id is reported even when the status is also bad
	w = s.do(t, http.MethodPut, "/api/feedback/unknown", map[string]string{"status": "weird"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Feedback not found")

	w = s.do(t, http.MethodGet, "/api/feedback", nil)
	var listed []types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	w = s.do(t, http.MethodPut, "/api/feedback/"+listed[0].ID, map[string]string{"status": "weird"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid status")

	w = s.do(t, http.MethodDelete, "/api/feedback/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	after, err := os.ReadFile(s.dataFile)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestChatProviderUnreachable(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")

	w := s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)

	// The router keeps serving.
	w = s.do(t, http.MethodGet, "/health/liveness", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatPassthrough(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi! How can I help?"}]}}]}`))
	}))
	defer provider.Close()

	s := newTestServer(t, provider.URL)

	w := s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"response":"Hi! How can I help?"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/chat", map[string]int{"message": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message must be a string")
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1")

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, types.HealthStatusUp, health.Components[types.HealthComponentStorage].Status)

	w = s.do(t, http.MethodGet, "/health/readiness", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.do(t, http.MethodGet, "/api/feedback", nil)
	w = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/feedback",status="200"}`)
	assert.Contains(t, w.Body.String(), "feedback_operations_total")

	w = s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/feedback/{id}")

	w = s.do(t, http.MethodGet, "/api/feedback", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
