// Package api implements the catalog query API.
//
// Handlers are thin: they parse parameters, call the engine and map its results.
//   - absence is a 404, never an error
//   - malformed parameters are a 400 with error INVALID_INPUT
//   - backing-store failures are a 502 (503 while the store breaker is open)
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shopwave-catalog/engine"
)

// ProductsAPI serves the product query endpoints.
type ProductsAPI struct {
	engine       *engine.Engine
	logger       *zap.Logger
	relatedDepth int
}

// NewProductsAPI creates the handler set. relatedDepth is the default hop limit for
// related products.
func NewProductsAPI(e *engine.Engine, logger *zap.Logger, relatedDepth int) *ProductsAPI {
	return &ProductsAPI{engine: e, logger: logger, relatedDepth: relatedDepth}
}

// SuggestProducts handles GET /v1/suggestions?prefix=<p>&limit=<n>.
//
// Returns product names and brands starting with prefix, case-insensitively. Result order
// is unspecified. limit defaults to the configured suggestion limit and is clamped to the
// configured maximum. An empty prefix matches nothing.
func (api *ProductsAPI) SuggestProducts(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("prefix"))
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	if limit < 0 {
		badRequest(c, "query param limit must not be negative")
		return
	}

	suggestions := api.engine.Suggest(prefix, int(limit))
	trace.SpanFromContext(c.Request.Context()).SetAttributes(
		attribute.String("catalog.prefix", prefix),
		attribute.Int("catalog.suggestions", len(suggestions)),
	)

	c.JSON(http.StatusOK, gin.H{
		"prefix":      prefix,
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// LookupSKU handles GET /v1/skus/:sku.
func (api *ProductsAPI) LookupSKU(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		badRequest(c, "sku is required")
		return
	}

	record, found, err := api.engine.LookupBySKU(c.Request.Context(), sku)
	if err != nil {
		storeError(c, err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, codeNotFound, "no product with sku "+sku)
		return
	}
	c.JSON(http.StatusOK, record)
}
