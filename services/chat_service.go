package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/internal/llm"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// NoResponseText is returned when the provider answered without any text.
const NoResponseText = "No response"

type ChatService struct {
	client   llm.Client
	timeout  time.Duration
	log      *zap.SugaredLogger
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewChatService forwards single messages to client. A zero timeout leaves
// the call bounded only by the request context.
func NewChatService(client llm.Client, timeout time.Duration, reg prometheus.Registerer) *ChatService {
	factory := promauto.With(reg)
	return &ChatService{
		client:  client,
		timeout: timeout,
		log:     logger.GetLogger().Named("chat"),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat passthrough requests by result",
		}, []string{"result"}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_provider_duration_seconds",
			Help:    "Time spent waiting for the remote provider",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// Reply sends message as a fresh single-turn conversation and returns the
// first text of the answer, or NoResponseText when there is none.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: message}})
	s.latency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.requests.WithLabelValues("error").Inc()
		return "", err
	}

	if resp.Content == "" {
		s.requests.WithLabelValues("empty").Inc()
		s.log.Debugw("Provider returned no text", "model", resp.Model)
		return NoResponseText, nil
	}

	s.requests.WithLabelValues("ok").Inc()
	return resp.Content, nil
}
