package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopwave-catalog/catalog"
)

// Error codes returned in the "error" field.
const (
	codeInvalidInput     = "INVALID_INPUT"
	codeNotFound         = "NOT_FOUND"
	codeNotReady         = "NOT_READY"
	codeStoreUnavailable = "STORE_UNAVAILABLE"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, codeInvalidInput, message)
}

// storeError maps a backing-store failure to 502 (503 when the breaker is open).
func storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusBadGateway
	if errors.Is(err, catalog.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}
	respondError(c, status, codeStoreUnavailable, err.Error())
}

// intQuery parses an optional integer query parameter, returning def when it is absent.
func intQuery(c *gin.Context, name string, def int64) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "query param "+name+" must be an integer")
		return 0, false
	}
	return v, true
}

func keyParam(c *gin.Context) (int64, bool) {
	key, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "product id must be an integer")
		return 0, false
	}
	return key, true
}
