package handler

import (
	"context"
	"net/http"
	"time"

	"aksara-bali-backend/internal/domains/aksara/service"
	"aksara-bali-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pinger - health check cho dependency phụ (queue broker)
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolStatsFunc - snapshot connection pool cho /api/db-test
type PoolStatsFunc func() (interface{}, error)

// SystemHandler - health, db-test, API index
type SystemHandler struct {
	service   service.ServiceInterface
	queue     Pinger
	poolStats PoolStatsFunc
	name      string
	version   string
	startedAt time.Time
	now       func() time.Time
}

// NewSystemHandler - queue có thể nil khi QUEUE_ENABLED=false
func NewSystemHandler(svc service.ServiceInterface, queue Pinger, name, version string) *SystemHandler {
	return &SystemHandler{
		service:   svc,
		queue:     queue,
		name:      name,
		version:   version,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// WithPoolStats - chỉ có khi DB_DRIVER=postgres
func (h *SystemHandler) WithPoolStats(fn PoolStatsFunc) *SystemHandler {
	h.poolStats = fn
	return h
}

// Health - GET /api/health
// Queue lỗi chỉ được báo cáo, không làm health fail.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		response.InternalServerError(c, "Health check failed")
		return
	}

	now := h.now()
	data := gin.H{
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(h.startedAt).Seconds(),
		"database":  "ok",
	}

	if h.queue != nil {
		queueStatus := "ok"
		if err := h.queue.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Queue broker unreachable")
			queueStatus = "unavailable"
		}
		data["queue"] = queueStatus
	}

	response.Success(c, http.StatusOK, "Server and database are healthy", data)
}

// DBTest - GET /api/db-test
func (h *SystemHandler) DBTest(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	info, err := h.service.DatabaseInfo(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database test failed")
		response.InternalServerError(c, "Database test failed")
		return
	}

	data := gin.H{"database": info}
	if h.poolStats != nil {
		if stats, err := h.poolStats(); err == nil {
			data["pool"] = stats
		}
	}

	response.Success(c, http.StatusOK, "Database test successful", data)
}

// Index - GET /api
func (h *SystemHandler) Index(c *gin.Context) {
	response.Success(c, http.StatusOK, h.name, gin.H{
		"name":        h.name,
		"version":     h.version,
		"description": "RESTful API for Balinese script data",
		"endpoints":   endpointIndex,
	})
}

var endpointIndex = gin.H{
	"GET /api/health":            "Health check",
	"GET /api/db-test":           "Database version and aksara_bali schema",
	"GET /api/aksara":            "Get all aksara with pagination",
	"GET /api/aksara/search":     "Search aksara",
	"GET /api/aksara/:id":        "Get specific aksara by ID",
	"POST /api/aksara":           "Create a new aksara",
	"PUT /api/aksara/:id":        "Update an existing aksara",
	"DELETE /api/aksara/:id":     "Delete an aksara",
	"GET /api/aksara/:id/model":  "Download the 3D model of an aksara",
	"POST /api/aksara/:id/model": "Upload a 3D model for an aksara",
	"GET /api/categories":        "Get all available categories",
	"GET /api/categories/stats":  "Entry count per category",
	"GET /api/stats":             "Get database statistics",
	"GET /api/random":            "Get random aksara",
	"GET /api/models/reconcile":  "Compare model files with aksara entries",
	"GET /metrics":               "Prometheus metrics",
}

// NotFound - mọi /api/* không khớp route
func (h *SystemHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success":            false,
		"message":            "API endpoint not found",
		"requestedEndpoint":  c.Request.URL.RequestURI(),
		"availableEndpoints": "GET /api for documentation",
	})
}
