package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shopwave-catalog/observability"
)

const tracerName = "shopwave-catalog/api"

// Handlers groups everything the router serves. Metrics may be nil.
type Handlers struct {
	Products *ProductsAPI
	Events   *CatalogEventsAPI
	Orders   OrdersAPI
	Health   *HealthAPI
	Metrics  *observability.Collector
	Logger   *zap.Logger
}

// NewRouter registers every route on a new gin engine.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), tracing(), requestMetrics(h.Metrics), accessLog(h.Logger))

	r.GET("/health", h.Health.HealthCheck)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	v1 := r.Group("/v1")
	v1.POST("/orders/history", h.Orders.OrderHistory)
	v1.POST("/catalog/events", h.Events.PublishEvent)

	// Everything below reads the indexes or the store and waits for the startup rebuild.
	indexed := v1.Group("", requireReady(h.Health.readiness))
	indexed.GET("/suggestions", h.Products.SuggestProducts)
	indexed.GET("/skus/:sku", h.Products.LookupSKU)
	indexed.GET("/recently-viewed", h.Products.RecentlyViewed)
	indexed.GET("/products/:id", h.Products.ViewProduct)
	indexed.GET("/products/:id/related", h.Products.RelatedProducts)
	indexed.GET("/catalog/sorted", h.Products.SortedCatalog)
	indexed.GET("/catalog/price-range", h.Products.PriceRange)
	indexed.GET("/catalog/cheapest", h.Products.Cheapest)
	indexed.GET("/catalog/median-price", h.Products.MedianPrice)

	return r
}

func requireReady(readiness Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !readiness.Ready() {
			respondError(c, http.StatusServiceUnavailable, codeNotReady, "catalog indexes not loaded")
			return
		}
		c.Next()
	}
}

// tracing opens one server span per request, continuing any incoming trace context.
func tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := otel.Tracer(tracerName).Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last().Err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func requestMetrics(metrics *observability.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Debug("request served", fields...)
	}
}
