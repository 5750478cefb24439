// Package health provides health check functionality for the fluxd node.
//
// The checker reports on:
// - Database responsiveness
// - Module invariants
// - Freshness of the latest aggregated answer
// - Funds available for future oracle payments
//
// The health check system supports multiple endpoints:
// - /health - Basic liveness check
// - /health/ready - Readiness check for load balancers
// - /health/detailed - Comprehensive status with metrics
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/mux"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Backend is the application state the checker inspects.
type Backend interface {
	LastBlockHeight() int64
	CheckInvariants(ctx context.Context) error
	Query(ctx context.Context, fn func(ctx sdk.Context) error) error
}

// Checker performs health checks on various components
type Checker struct {
	logger  log.Logger
	backend Backend
	keeper  *keeper.Keeper
	version string

	// Thresholds for health determination
	maxResponseTime time.Duration
	staleAfter      time.Duration

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// Config holds configuration for the health checker
type Config struct {
	// MaxResponseTime is the maximum acceptable state query time
	MaxResponseTime time.Duration

	// StaleAfter is the age of the latest answer after which the feed is
	// reported as degraded
	StaleAfter time.Duration

	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration

	// Version is reported in every response
	Version string
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: time.Second,
		StaleAfter:      time.Hour,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker
func NewChecker(logger log.Logger, cfg Config, backend Backend, k *keeper.Keeper) (*Checker, error) {
	if backend == nil || k == nil {
		return nil, fmt.Errorf("backend and keeper are required")
	}

	return &Checker{
		logger:          logger,
		backend:         backend,
		keeper:          k,
		version:         cfg.Version,
		maxResponseTime: cfg.MaxResponseTime,
		staleAfter:      cfg.StaleAfter,
		cacheDuration:   cfg.CacheDuration,
	}, nil
}

// Check performs a comprehensive health check
func (c *Checker) Check(ctx context.Context, detailed bool) (*HealthCheck, error) {
	// Return cached result if still valid
	if !detailed && c.shouldUseCached() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.cachedHealth, nil
	}

	components := map[string]ComponentHealth{
		"database":   c.checkDatabase(ctx),
		"invariants": c.checkInvariants(ctx),
		"feed":       c.checkFeed(ctx),
		"funds":      c.checkFunds(ctx),
	}

	health := &HealthCheck{
		Status:     c.calculateOverallStatus(components),
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: components,
	}

	c.mu.Lock()
	c.cachedHealth = health
	c.lastCheck = time.Now()
	c.mu.Unlock()

	return health, nil
}

// checkDatabase verifies the state store answers queries in time
func (c *Checker) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := c.backend.Query(ctx, func(ctx sdk.Context) error {
		c.keeper.ReportingRoundID(ctx)
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("Database query failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	componentStatus := StatusHealthy
	message := "Database is responsive"
	if duration > c.maxResponseTime {
		componentStatus = StatusDegraded
		message = "Database response time is degraded"
	}

	return ComponentHealth{
		Status:    componentStatus,
		Message:   message,
		Timestamp: time.Now(),
		Metrics: map[string]interface{}{
			"query_time_ms": duration.Milliseconds(),
			"height":        c.backend.LastBlockHeight(),
		},
	}
}

// checkInvariants runs the registered module invariants
func (c *Checker) checkInvariants(ctx context.Context) ComponentHealth {
	if err := c.backend.CheckInvariants(ctx); err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   err.Error(),
			Timestamp: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "All invariants hold",
		Timestamp: time.Now(),
	}
}

// checkFeed reports how old the latest aggregated answer is
func (c *Checker) checkFeed(ctx context.Context) ComponentHealth {
	var (
		latest, reporting uint32
		updatedAt         uint64
		now               time.Time
	)
	err := c.backend.Query(ctx, func(ctx sdk.Context) error {
		latest = c.keeper.LatestRoundID(ctx)
		reporting = c.keeper.ReportingRoundID(ctx)
		updatedAt = c.keeper.GetTimestamp(ctx, latest)
		now = ctx.BlockTime()
		return nil
	})
	if err != nil {
		return ComponentHealth{
			Status:    StatusUnknown,
			Message:   fmt.Sprintf("Feed query failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	metrics := map[string]interface{}{
		"latest_round":    latest,
		"reporting_round": reporting,
	}

	if latest == 0 {
		return ComponentHealth{
			Status:    StatusDegraded,
			Message:   "No round has been answered yet",
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	age := now.Sub(time.Unix(int64(updatedAt), 0))
	metrics["answer_age_seconds"] = int64(age.Seconds())

	if c.staleAfter > 0 && age > c.staleAfter {
		return ComponentHealth{
			Status:    StatusDegraded,
			Message:   "Latest answer is stale",
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "Feed is fresh",
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// checkFunds compares available funds with the payment reserve
func (c *Checker) checkFunds(ctx context.Context) ComponentHealth {
	var (
		available, reserve string
		covered            bool
	)
	err := c.backend.Query(ctx, func(ctx sdk.Context) error {
		cfg := c.keeper.GetRoundConfig(ctx)
		required, err := c.keeper.RequiredReserve(ctx, cfg.PaymentAmount)
		if err != nil {
			return err
		}
		funds := c.keeper.AvailableFunds(ctx)
		available, reserve = funds.String(), required.String()
		covered = funds.GTE(required)
		return nil
	})
	if err != nil {
		return ComponentHealth{
			Status:    StatusUnknown,
			Message:   fmt.Sprintf("Funds query failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	metrics := map[string]interface{}{
		"available": available,
		"reserve":   reserve,
	}

	if !covered {
		return ComponentHealth{
			Status:    StatusDegraded,
			Message:   "Available funds are below the payment reserve",
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "Payment reserve is covered",
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func (c *Checker) calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded, StatusUnknown:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// shouldUseCached determines if cached health check results should be used
func (c *Checker) shouldUseCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil {
		return false
	}

	return time.Since(c.lastCheck) < c.cacheDuration
}

// RegisterRoutes registers health check endpoints on router
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods("GET")
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods("GET")
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods("GET")
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth handles the basic liveness check endpoint
func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleHealthReady handles the readiness check endpoint
func (c *Checker) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	health, err := c.Check(r.Context(), false)
	if err != nil {
		c.logger.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, health)
}

// handleHealthDetailed handles the detailed health check endpoint
func (c *Checker) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	health, err := c.Check(r.Context(), true)
	if err != nil {
		c.logger.Error("Detailed health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, health)
}
