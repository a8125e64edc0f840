package monitoring_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-app/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
)

func TestCollectorCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := monitoring.NewCollector()

	router := gin.New()
	router.Use(collector.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ok", nil)
		router.ServeHTTP(w, req)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(w, req)

	snap := collector.Snapshot()
	if snap.RequestCount != 4 {
		t.Errorf("Expected 4 requests, got %d", snap.RequestCount)
	}
	if snap.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", snap.ErrorCount)
	}
	if snap.Endpoints["GET /ok"] != 3 {
		t.Errorf("Expected 3 calls to GET /ok, got %d", snap.Endpoints["GET /ok"])
	}
}

func TestHealthHandlerReflectsChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := monitoring.NewCollector()
	collector.RegisterHealthCheck("database", func(ctx context.Context) error { return nil })

	router := gin.New()
	router.GET("/health", collector.HealthHandler())
	router.GET("/ready", collector.ReadinessHandler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	collector.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d after failing check, got %d", http.StatusServiceUnavailable, w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ready", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected readiness %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
