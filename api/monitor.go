package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"livro/services"
)

// MonitorController reports service health.
type MonitorController struct {
	DB           *gorm.DB
	RDB          *redis.Client
	Hub          *services.Hub
	KafkaService *services.KafkaService
}

// NewMonitorController creates a MonitorController. rdb and kafkaService may
// be nil.
func NewMonitorController(db *gorm.DB, rdb *redis.Client, hub *services.Hub, kafkaService *services.KafkaService) *MonitorController {
	return &MonitorController{DB: db, RDB: rdb, Hub: hub, KafkaService: kafkaService}
}

// Health checks the database and Redis and reports runtime counters. It
// answers 503 when the database is unreachable.
func (c *MonitorController) Health(ctx *gin.Context) {
	rc, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "ok"
	if sqlDB, err := c.DB.DB(); err != nil {
		database, status = err.Error(), http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(rc); err != nil {
		database, status = err.Error(), http.StatusServiceUnavailable
	}

	cache := "disabled"
	if c.RDB != nil {
		cache = "ok"
		if err := c.RDB.Ping(rc).Err(); err != nil {
			cache = err.Error()
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	body := gin.H{
		"sucesso":     status == http.StatusOK,
		"database":    database,
		"redis":       cache,
		"connections": c.Hub.ConnectionCount(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	}
	if c.KafkaService != nil {
		body["kafka"] = c.KafkaService.GetMetrics()
	}
	ctx.JSON(status, body)
}
