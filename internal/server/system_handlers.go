package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves health and system monitoring endpoints.
type SystemHandlers struct {
	startedAt time.Time
	version   string
	log       zerolog.Logger
}

// NewSystemHandlers creates the system handler group.
func NewSystemHandlers(version string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		startedAt: time.Now(),
		version:   version,
		log:       log.With().Str("component", "system_handlers").Logger(),
	}
}

func (h *SystemHandlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.log, w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "equiscan",
		"version": h.version,
	})
}

func (h *SystemHandlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := map[string]any{
		"status":         "running",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		status["cpu_percent"] = cpuPercent[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["system_memory"] = map[string]any{
			"total_mb":     vm.Total / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	}

	writeJSON(h.log, w, http.StatusOK, status)
}

func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
