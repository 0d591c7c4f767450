package handlers

import (
	"net/http"
	"sort"

	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthHandler serves the liveness, readiness and detailed health routes.
type HealthHandler struct {
	healthService HealthServiceInterface
}

func NewHealthHandler(healthService HealthServiceInterface) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// readinessResponse is what load balancers see. Failing lists the components
// reported DOWN, sorted by name.
type readinessResponse struct {
	Status  types.HealthStatus `json:"status"`
	Failing []string           `json:"failing,omitempty"`
}

// LivenessCheck answers as long as the process can serve HTTP. It never runs
// the dependency checks.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	writeHealth(c, http.StatusOK, readinessResponse{Status: types.HealthStatusUp})
}

// ReadinessCheck runs the checks and answers 503 only when the overall status
// is DOWN. A degraded optional dependency keeps the instance in rotation.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	code := http.StatusOK
	if health.Status == types.HealthStatusDown {
		code = http.StatusServiceUnavailable
	}
	writeHealth(c, code, readinessResponse{Status: health.Status, Failing: downComponents(health)})
}

// DetailedHealth reports every component and always answers 200.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	writeHealth(c, http.StatusOK, h.healthService.CheckHealth(c.Request.Context()))
}

// writeHealth disables caching and drops the body for HEAD requests.
func writeHealth(c *gin.Context, code int, body interface{}) {
	c.Header("Cache-Control", "no-store")
	if c.Request.Method == http.MethodHead {
		c.Status(code)
		return
	}
	c.JSON(code, body)
}

func downComponents(health types.HealthCheck) []string {
	var down []string
	for name, component := range health.Components {
		if component.Status == types.HealthStatusDown {
			down = append(down, name)
		}
	}
	sort.Strings(down)
	return down
}
