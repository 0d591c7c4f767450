package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"go.uber.org/zap"
)

// Pinger is implemented by every dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	storage        Pinger
	redisClient    Pinger
	chatConfigured bool
	chatProvider   string
	version        string
	startTime      time.Time
	log            *zap.SugaredLogger
}

// NewHealthService creates the health checker. redisClient may be nil when
// event publishing is disabled.
func NewHealthService(storage Pinger, redisClient Pinger, chatProvider string, chatConfigured bool, version string) *HealthService {
	return &HealthService{
		storage:        storage,
		redisClient:    redisClient,
		chatConfigured: chatConfigured,
		chatProvider:   chatProvider,
		version:        version,
		startTime:      time.Now(),
		log:            logger.GetLogger(),
	}
}

// CheckHealth reports DOWN when the data file cannot be reached, and
// DEGRADED when only chat or event publishing is impaired.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	storageStatus := h.checkStorage(ctx)
	components[types.HealthComponentStorage] = storageStatus
	if storageStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	chatStatus := h.checkChat()
	components[types.HealthComponentChat] = chatStatus
	if chatStatus.Status != types.HealthStatusUp && overallStatus != types.HealthStatusDown {
		overallStatus = types.HealthStatusDegraded
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis(ctx)
		components[types.HealthComponentRedis] = redisStatus
		if redisStatus.Status != types.HealthStatusUp && overallStatus != types.HealthStatusDown {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStorage(ctx context.Context) types.HealthComponent {
	if err := h.storage.Ping(ctx); err != nil {
		h.log.Errorw("Storage health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Feedback data file is not accessible",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}

// checkChat only inspects configuration; probing the provider would spend quota.
func (h *HealthService) checkChat() types.HealthComponent {
	if !h.chatConfigured {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: h.chatProvider + " API key is not configured",
		}
	}

	return types.HealthComponent{
		Status:  types.HealthStatusUp,
		Details: h.chatProvider,
	}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
