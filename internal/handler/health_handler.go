package handler

import (
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jmoiron/sqlx"

    "github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

var startTime = time.Now()

// HealthHandler provides the health endpoint.
type HealthHandler struct {
    db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
    return &HealthHandler{db: db}
}

// GetHealth responds with service and database status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    dbStatus := "connected"
    if err := h.db.PingContext(c.Request.Context()); err != nil {
        dbStatus = "disconnected"
    }

    utils.Success(c, 200, "Service is healthy", gin.H{
        "status":  "healthy",
        "version": "1.0.0",
        "uptime":  int(time.Since(startTime).Seconds()),
        "database": gin.H{
            "status": dbStatus,
        },
    })
}
