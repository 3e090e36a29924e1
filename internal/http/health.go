package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is implemented by the local intent database.
type Pinger interface {
	Ping() error
}

type HealthController struct {
	db      Pinger
	store   StoreChecker
	version string
}

func NewHealthController(db Pinger, store StoreChecker, version string) *HealthController {
	return &HealthController{db: db, store: store, version: version}
}

// Ping is a liveness probe.
// GET /ping
func (hc *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Health checks the intent database and, unless shallow=true, that the
// tabular store answers a table listing.
// GET /health
func (hc *HealthController) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if hc.db != nil {
		if err := hc.db.Ping(); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if hc.store != nil && c.Query("shallow") != "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := hc.store.ListTables(ctx); err != nil {
			checks["store"] = err.Error()
			healthy = false
		} else {
			checks["store"] = "ok"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "version": hc.version, "checks": checks})
}
