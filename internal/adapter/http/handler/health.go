package handler

import (
	"net/http"

	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

// HealthDetails adds service specific fields to the health response.
type HealthDetails func() map[string]any

type Health struct {
	serviceName string
	details     HealthDetails
	log         logger.Logger
}

func NewHealth(serviceName string, details HealthDetails, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		details:     details,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
// HealthCheck - returns system information.
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	info := map[string]any{
		"service-name": a.serviceName,
	}
	if a.details != nil {
		for k, v := range a.details() {
			info[k] = v
		}
	}

	response := envelope{
		"status":      "available",
		"system_info": info,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
