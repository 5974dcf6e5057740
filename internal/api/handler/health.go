package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/mediagrab/internal/repository"
	"github.com/iconidentify/mediagrab/internal/worker"
)

var startTime = time.Now()

// PoolStats reports dispatcher counters.
type PoolStats interface {
	Stats() worker.Stats
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	deliveries   repository.DeliveryRepository
	pool         PoolStats
	downloadPath string
}

// NewHealthHandler creates a new health handler. pool may be nil.
func NewHealthHandler(deliveries repository.DeliveryRepository, pool PoolStats, downloadPath string) *HealthHandler {
	return &HealthHandler{
		deliveries:   deliveries,
		pool:         pool,
		downloadPath: downloadPath,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status     string           `json:"status"`
	Timestamp  string           `json:"timestamp"`
	Deliveries *DeliverySummary `json:"deliveries,omitempty"`
	Workers    *worker.Stats    `json:"workers,omitempty"`
}

// DeliverySummary contains delivery counters.
type DeliverySummary struct {
	Total      int `json:"total"`
	Inline     int `json:"inline"`
	RemoteLink int `json:"remote_link"`
	Failed     int `json:"failed"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.deliveries.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Deliveries: &DeliverySummary{
			Total:      stats.Total,
			Inline:     stats.Inline,
			RemoteLink: stats.RemoteLink,
			Failed:     stats.Failed,
		},
	}
	if h.pool != nil {
		ps := h.pool.Stats()
		resp.Workers = &ps
	}
	writeJSON(w, http.StatusOK, resp)
}

// SystemStats contains runtime and delivery statistics.
type SystemStats struct {
	Uptime        int64                     `json:"uptime_seconds"`
	UptimeHuman   string                    `json:"uptime_human"`
	MemAllocMB    int64                     `json:"mem_alloc_mb"`
	MemSysMB      int64                     `json:"mem_sys_mb"`
	NumGoroutines int                       `json:"num_goroutines"`
	NumCPU        int                       `json:"num_cpu"`
	DownloadPath  string                    `json:"download_path"`
	DiskFree      string                    `json:"disk_free,omitempty"`
	DiskTotal     string                    `json:"disk_total,omitempty"`
	DiskFreeBytes uint64                    `json:"disk_free_bytes"`
	Workers       *worker.Stats             `json:"workers,omitempty"`
	Deliveries    *repository.DeliveryStats `json:"deliveries"`
	InlineVolume  string                    `json:"inline_volume"`
}

// Stats handles GET /api/v1/stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)

	stats := SystemStats{
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		MemSysMB:      int64(m.Sys / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		DownloadPath:  h.downloadPath,
	}

	if total, free, ok := getDiskStats(h.downloadPath); ok {
		stats.DiskFreeBytes = free
		stats.DiskFree = humanize.IBytes(free)
		stats.DiskTotal = humanize.IBytes(total)
	}

	if h.pool != nil {
		ps := h.pool.Stats()
		stats.Workers = &ps
	}

	deliveries, err := h.deliveries.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to read delivery stats"})
		return
	}
	stats.Deliveries = deliveries
	stats.InlineVolume = humanize.IBytes(uint64(deliveries.InlineBytes))

	writeJSON(w, http.StatusOK, stats)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
