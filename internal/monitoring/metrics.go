package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Collector accumulates request counters for the /metrics endpoint.
type Collector struct {
	mu            sync.RWMutex
	requestCount  int64
	errorCount    int64
	active        int64
	totalDuration time.Duration
	statusCodes   map[string]int64
	endpoints     map[string]int64
	startTime     time.Time
	lastRequest   time.Time

	checks map[string]HealthCheckFunc
}

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

type Snapshot struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	AvgDurationMs  float64          `json:"avg_request_duration_ms"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoint_calls"`
	StartTime      time.Time        `json:"start_time"`
	LastRequest    time.Time        `json:"last_request"`
}

func NewCollector() *Collector {
	return &Collector{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
		checks:      make(map[string]HealthCheckFunc),
	}
}

func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		c.mu.Lock()
		c.active++
		c.mu.Unlock()

		ctx.Next()

		duration := time.Since(start)
		statusCode := ctx.Writer.Status()
		endpoint := ctx.Request.Method + " " + ctx.FullPath()

		c.mu.Lock()
		c.active--
		c.requestCount++
		c.totalDuration += duration
		c.lastRequest = time.Now()
		if statusCode >= 400 {
			c.errorCount++
		}
		c.statusCodes[http.StatusText(statusCode)]++
		c.endpoints[endpoint]++
		c.mu.Unlock()
	}
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		RequestCount:   c.requestCount,
		ErrorCount:     c.errorCount,
		ActiveRequests: c.active,
		StatusCodes:    make(map[string]int64, len(c.statusCodes)),
		Endpoints:      make(map[string]int64, len(c.endpoints)),
		StartTime:      c.startTime,
		LastRequest:    c.lastRequest,
	}
	if c.requestCount > 0 {
		snap.AvgDurationMs = float64(c.totalDuration.Milliseconds()) / float64(c.requestCount)
	}
	for k, v := range c.statusCodes {
		snap.StatusCodes[k] = v
	}
	for k, v := range c.endpoints {
		snap.Endpoints[k] = v
	}
	return snap
}

func (c *Collector) RegisterHealthCheck(name string, checkFunc HealthCheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = checkFunc
}

// RunHealthChecks executes every registered check with a 5 second timeout.
func (c *Collector) RunHealthChecks() map[string]HealthCheck {
	c.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	results := make(map[string]HealthCheck, len(checks))
	for name, fn := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		result := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
		if err := fn(ctx); err != nil {
			result.Status = "unhealthy"
			result.Message = err.Error()
		}
		cancel()
		results[name] = result
	}
	return results
}

type SystemMetrics struct {
	Uptime         string `json:"uptime"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUCount       int    `json:"cpu_count"`
	GoVersion      string `json:"go_version"`
	AllocMB        uint64 `json:"alloc_mb"`
	SysMB          uint64 `json:"sys_mb"`
	NumGC          uint32 `json:"num_gc"`
}

func (c *Collector) SystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Uptime:         time.Since(c.startTime).String(),
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
		AllocMB:        m.Alloc / 1024 / 1024,
		SysMB:          m.Sys / 1024 / 1024,
		NumGC:          m.NumGC,
	}
}

func (c *Collector) MetricsHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"application": c.Snapshot(),
			"system":      c.SystemMetrics(),
			"timestamp":   time.Now(),
		})
	}
}

func (c *Collector) HealthHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := c.RunHealthChecks()

		overallStatus := "healthy"
		for _, check := range checks {
			if check.Status != "healthy" {
				overallStatus = "unhealthy"
				break
			}
		}

		status := http.StatusOK
		if overallStatus != "healthy" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(c.startTime).String(),
		})
	}
}

func (c *Collector) ReadinessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		for _, check := range c.RunHealthChecks() {
			if check.Status != "healthy" {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "not ready",
					"timestamp": time.Now(),
				})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now(),
		})
	}
}
