package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for RedisPublisher
type Config struct {
	Channel        string
	PublishTimeout time.Duration
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Channel:        "feedback:events",
		PublishTimeout: 5 * time.Second,
	}
}

// metrics holds Prometheus metrics for the publisher
type metrics struct {
	publishLatency prometheus.Histogram
	errorCount     *prometheus.CounterVec
	eventCount     *prometheus.CounterVec
}

// newMetrics creates the publisher metrics on reg. A nil reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		publishLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "event_publish_duration_seconds",
			Help:    "Time taken to publish events",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_errors_total",
			Help: "Total number of event-related errors",
		}, []string{"operation", "type"}),
		eventCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_total",
			Help: "Total number of events by operation and type",
		}, []string{"operation", "type"}),
	}
}

// RedisPublisher implements types.EventPublisher using Redis Pub/Sub
type RedisPublisher struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
}

var _ types.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(rdb *redis.Client, cfg Config, reg prometheus.Registerer) *RedisPublisher {
	defaults := DefaultConfig()
	if cfg.Channel == "" {
		cfg.Channel = defaults.Channel
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaults.PublishTimeout
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(reg),
		config:  cfg,
	}
}

// Publish publishes an event on the configured channel
func (p *RedisPublisher) Publish(ctx context.Context, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if err := event.Validate(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid event: %w", err)
	}

	// Set defaults if needed
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = 1
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.config.Channel, data).Err(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("publish", string(event.Type)).Inc()
	p.log.Debugw("Published feedback event", "type", event.Type, "feedbackId", event.FeedbackID, "channel", p.config.Channel)
	return nil
}

// Ping checks the Redis connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
