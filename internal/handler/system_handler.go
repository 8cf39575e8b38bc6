package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthCheck checks one backing service.
type HealthCheck func(ctx context.Context) error

// SystemHandler reports liveness and runtime status.
type SystemHandler struct {
	checks    map[string]HealthCheck
	queueLen  func(ctx context.Context) (int64, error)
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. queueLen reports the pending share-link views.
func NewSystemHandler(checks map[string]HealthCheck, queueLen func(ctx context.Context) (int64, error), log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		queueLen:  queueLen,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Pings every backing service. Answers 503 when any of them is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	services := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("service", name).Msg("Health check failed")
			services[name] = "down"
			status = "degraded"
			continue
		}
		services[name] = "up"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, gin.H{"status": status, "services": services})
}

type systemStatus struct {
	Uptime         string `json:"uptime"`
	Goroutines     int    `json:"goroutines"`
	HeapAlloc      uint64 `json:"heap_alloc"`
	HeapSys        uint64 `json:"heap_sys"`
	NumGC          uint32 `json:"num_gc"`
	GoVersion      string `json:"go_version"`
	NumCPU         int    `json:"num_cpu"`
	QueueLinkViews int64  `json:"queue_link_views"`
}

// Status godoc
// GET /api/v1/admin/system/status
// Returns Go runtime figures and the view count backlog.
func (h *SystemHandler) Status(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := systemStatus{
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		HeapSys:    mem.HeapSys,
		NumGC:      mem.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}
	if h.queueLen != nil {
		n, err := h.queueLen(c.Request.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Read view queue length failed")
			n = -1
		}
		st.QueueLinkViews = n
	}

	response.Success(c, http.StatusOK, st)
}
