package bootstrap

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	infragin "github.com/jonesrussell/veracity/infrastructure/gin"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/mltransport"
)

// HealthChecks maps dependency names to /health checks.
type HealthChecks map[string]infragin.HealthChecker

// newHealthChecks registers a check per configured optional dependency.
// All of them have fallbacks, so failures report degraded, not unhealthy.
func newHealthChecks(cfg *config.Config, client *redis.Client, transport *mltransport.Transport) HealthChecks {
	checks := HealthChecks{}

	if client != nil {
		checks["redis"] = func(ctx context.Context) infragin.CheckResult {
			if err := client.Ping(ctx).Err(); err != nil {
				return infragin.CheckResult{Status: infragin.HealthStatusDegraded, Message: err.Error()}
			}
			return infragin.CheckResult{Status: infragin.HealthStatusHealthy}
		}
	}

	sidecars := map[string]string{
		"text_model":      "",
		"sentiment_model": cfg.Text.SentimentURL,
		"face_detector":   cfg.Image.SecondaryFacesURL,
		"face_backbone":   cfg.Image.BackboneURL,
	}
	if cfg.Text.Model == config.ModelSidecar {
		sidecars["text_model"] = cfg.Text.SidecarURL
	}
	for name, url := range sidecars {
		if url == "" {
			continue
		}
		checks[name] = sidecarCheck(transport, url)
	}

	return checks
}

func sidecarCheck(transport *mltransport.Transport, baseURL string) infragin.HealthChecker {
	baseURL = strings.TrimRight(baseURL, "/")
	return func(ctx context.Context) infragin.CheckResult {
		status, err := transport.Health(ctx, baseURL)
		if err != nil || !status.Reachable {
			msg := "unreachable"
			if err != nil {
				msg = err.Error()
			}
			return infragin.CheckResult{Status: infragin.HealthStatusDegraded, Message: msg}
		}
		return infragin.CheckResult{Status: infragin.HealthStatusHealthy, Message: status.ModelVersion}
	}
}
