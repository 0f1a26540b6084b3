package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Readiness is satisfied by the engine.
type Readiness interface {
	Ready() bool
}

// BreakerState is satisfied by catalog.BreakerStore.
type BreakerState interface {
	State() string
}

type HealthAPI struct {
	readiness Readiness
	breaker   BreakerState // nil for the in-memory store
	started   time.Time
}

func NewHealthAPI(readiness Readiness, breaker BreakerState) *HealthAPI {
	return &HealthAPI{readiness: readiness, breaker: breaker, started: time.Now()}
}

// GET /health
//
// 200 once the startup index rebuild has completed, 503 before. An open store breaker
// reports "degraded" but stays 200: the indexes still answer suggestions and SKU hits.
func (api *HealthAPI) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"uptime": time.Since(api.started).Round(time.Second).String(),
	}
	if api.breaker != nil {
		resp["store_breaker"] = api.breaker.State()
	}

	if !api.readiness.Ready() {
		resp["status"] = "starting"
		resp["message"] = "catalog indexes not loaded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	resp["status"] = "ok"
	resp["message"] = "service healthy"
	if api.breaker != nil && api.breaker.State() == "open" {
		resp["status"] = "degraded"
		resp["message"] = "backing store unavailable"
	}
	c.JSON(http.StatusOK, resp)
}
