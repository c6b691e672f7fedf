package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Check pings one optional dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	db     *gorm.DB
	checks map[string]Check
}

func NewHealthHandler(db *gorm.DB, checks map[string]Check) *HealthHandler {
	return &HealthHandler{db: db, checks: checks}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		body["db"] = "error: cannot connect to DB"
		body["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, body)
		return
	}

	// Optional dependencies degrade the status without failing the probe.
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			body[name] = "error: " + err.Error()
			body["status"] = "degraded"
			continue
		}
		body[name] = "ok"
	}
	c.JSON(http.StatusOK, body)
}
