package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopwave-catalog/engine"
)

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status string    `json:"status" binding:"required"` // placed, paid, shipped, delivered
	At     time.Time `json:"at"`
}

// OrderHistory is the body of POST /v1/orders/history, oldest change first.
type OrderHistory struct {
	OrderID string         `json:"order_id" binding:"required"`
	History []StatusChange `json:"history" binding:"dive"`
}

type OrdersAPI struct{}

// OrderHistory handles POST /v1/orders/history and returns the same history newest first,
// the order a customer-facing tracking page shows it in.
func (OrdersAPI) OrderHistory(c *gin.Context) {
	var req OrderHistory
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	history := engine.Reverse(req.History)
	current := ""
	if len(history) > 0 {
		current = history[0].Status
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": req.OrderID,
		"status":   current,
		"history":  history,
	})
}
