package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopwave-catalog/catalog"
	"shopwave-catalog/events"
)

// CatalogEventRequest is the body of POST /v1/catalog/events.
type CatalogEventRequest struct {
	Kind   events.Kind     `json:"kind" binding:"required"`
	Key    int64           `json:"key"`
	Record *catalog.Record `json:"record"`
}

type CatalogEventsAPI struct {
	publisher events.Publisher // SNS topic or Redis channel; nil when publishing is disabled
	logger    *zap.Logger
}

func NewCatalogEventsAPI(publisher events.Publisher, logger *zap.Logger) *CatalogEventsAPI {
	return &CatalogEventsAPI{publisher: publisher, logger: logger}
}

// PublishEvent handles POST /v1/catalog/events.
//
// The mutation is not applied here. It is published and reaches the indexes when a
// consumer picks it up, so the client gets 202 Accepted immediately.
func (api *CatalogEventsAPI) PublishEvent(c *gin.Context) {
	var req CatalogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Key == 0 && req.Record != nil {
		req.Key = req.Record.Key
	}

	event := events.NewEvent(req.Kind, req.Key, req.Record)
	if err := event.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	if api.publisher == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing_publisher"})
		return
	}

	if err := api.publisher.Publish(c.Request.Context(), event); err != nil {
		api.logger.Error("publish catalog event", zap.String("event_id", event.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "publish_failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "accepted",
		"event_id": event.ID,
		"kind":     event.Kind,
		"note":     "Queued for indexing",
	})
}
