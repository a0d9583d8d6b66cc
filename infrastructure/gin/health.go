package gin

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the overall or per-check health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const (
	healthCheckTimeout = 2 * time.Second
	bytesPerMiB        = 1 << 20
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Message string                 `json:"message"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker checks one dependency.
type HealthChecker func(ctx context.Context) CheckResult

// HealthOptions configures RegisterHealthRoutes.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	StartTime      time.Time
	Checks         map[string]HealthChecker
}

// MemoryStats is the body of GET /health/memory.
type MemoryStats struct {
	AllocMiB      float64 `json:"alloc_mib"`
	TotalAllocMiB float64 `json:"total_alloc_mib"`
	SysMiB        float64 `json:"sys_mib"`
	HeapInuseMiB  float64 `json:"heap_inuse_mib"`
	NumGC         uint32  `json:"num_gc"`
	Goroutines    int     `json:"goroutines"`
}

var processStart = sync.OnceValue(time.Now)

// RegisterHealthRoutes adds GET /health, HEAD /health and GET /health/memory.
// A degraded check keeps 200; an unhealthy one turns the response into 503.
func RegisterHealthRoutes(router *gin.Engine, opts HealthOptions) {
	if opts.StartTime.IsZero() {
		opts.StartTime = processStart()
	}

	router.GET("/health", func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Message: "API is running",
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(opts.StartTime).Truncate(time.Second).String(),
		}

		if len(opts.Checks) > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()

			resp.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				start := time.Now()
				res := check(ctx)
				if res.Latency == "" {
					res.Latency = time.Since(start).String()
				}
				resp.Checks[name] = res
				resp.Status = worse(resp.Status, res.Status)
			}
		}

		code := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	})

	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/health/memory", func(c *gin.Context) {
		c.JSON(http.StatusOK, readMemoryStats())
	})
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func readMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMiB:      float64(m.Alloc) / bytesPerMiB,
		TotalAllocMiB: float64(m.TotalAlloc) / bytesPerMiB,
		SysMiB:        float64(m.Sys) / bytesPerMiB,
		HeapInuseMiB:  float64(m.HeapInuse) / bytesPerMiB,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
	}
}
