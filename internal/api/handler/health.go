package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

var startTime = time.Now()

// HealthHandler handles the health and stats endpoints.
type HealthHandler struct {
	storagePath string
}

// NewHealthHandler creates a new health handler. storagePath is the
// downloads root reported by the stats endpoint.
func NewHealthHandler(storagePath string) *HealthHandler {
	return &HealthHandler{storagePath: storagePath}
}

// PingResponse is the JSON response for uptime monitors.
type PingResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Ping handles GET /ping - liveness probe for uptime monitoring.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(PingResponse{
		Status:    "alive",
		Message:   "Instagram Reel Downloader is running!",
		Timestamp: time.Now().Unix(),
	})
}

// SystemStats contains system resource statistics.
type SystemStats struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	MemAllocMB    int64  `json:"mem_alloc_mb"`
	MemSysMB      int64  `json:"mem_sys_mb"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	DiskFreeBytes int64  `json:"disk_free_bytes"`
	StoragePath   string `json:"storage_path"`
}

// Stats handles GET /stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := SystemStats{
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		MemSysMB:      int64(m.Sys / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		DiskFreeBytes: getFreeDiskSpace(h.storagePath),
		StoragePath:   h.storagePath,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}
