package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/shubhams167/aura/internal/di"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	container   *di.Container
	startupTime time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		container:   container,
		startupTime: time.Now(),
	}
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Database       string  `json:"database"`
	DatabaseStatus string  `json:"database_status"`
	DeepCheck      bool    `json:"deep_check"`
	CPUPercent     float64 `json:"cpu_percent"`
	RAMPercent     float64 `json:"ram_percent"`
	GoVersion      string  `json:"go_version"`
	Goroutines     int     `json:"goroutines"`
}

// HandleSystemStatus reports process uptime, database health and host load.
// ?deep=1 replaces the database ping with a full integrity check.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeSeconds:  int64(time.Since(h.startupTime).Seconds()),
		Database:       h.container.DatabaseDriver(),
		DatabaseStatus: "ok",
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
	}

	deep := isTruthy(r.URL.Query().Get("deep"))
	checkTimeout := 2 * time.Second
	if deep {
		checkTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if db := h.container.DB(); db == nil {
		response.Status = "degraded"
		response.DatabaseStatus = "unavailable"
	} else if err := checkDatabase(ctx, db, deep); err != nil {
		h.log.Warn().Err(err).Bool("deep", deep).Msg("Database check failed")
		response.Status = "degraded"
		response.DatabaseStatus = "error"
	}
	response.DeepCheck = deep

	response.CPUPercent, response.RAMPercent = h.getSystemStats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

func checkDatabase(ctx context.Context, db di.HealthChecker, deep bool) error {
	if deep {
		return db.HealthCheck(ctx)
	}
	return db.QuickCheck(ctx)
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
