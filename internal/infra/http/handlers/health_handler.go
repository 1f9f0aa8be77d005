package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const (
	depHealthy       = "healthy"
	depNotConfigured = "not configured"
)

type HealthHandler struct {
	DB        *sql.DB
	Redis     *redis.Client
	RabbitMQ  *amqp091.Connection
	Storage   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Storage      string            `json:"storage"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(storage string, db *sql.DB, rdb *redis.Client, rabbitMQ *amqp091.Connection) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb, RabbitMQ: rabbitMQ, Storage: storage, StartTime: time.Now()}
}

// Handle reports 503 when a configured dependency is down. The file store has
// no remote dependency, so a file-backed instance is healthy on its own.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"database": h.checkDB(ctx),
		"redis":    h.checkRedis(ctx),
		"rabbitmq": h.checkRabbit(),
	}

	status, code := "healthy", http.StatusOK
	for _, v := range deps {
		if v != depHealthy && v != depNotConfigured {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Storage:      h.Storage,
		Dependencies: deps,
	})
}

func (h *HealthHandler) checkDB(ctx context.Context) string {
	if h.DB == nil {
		return depNotConfigured
	}
	return describe(h.DB.PingContext(ctx))
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	if h.Redis == nil {
		return depNotConfigured
	}
	return describe(h.Redis.Ping(ctx).Err())
}

func (h *HealthHandler) checkRabbit() string {
	if h.RabbitMQ == nil {
		return depNotConfigured
	}
	if h.RabbitMQ.IsClosed() {
		return "unhealthy: connection closed"
	}
	return depHealthy
}

func describe(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return depHealthy
}
