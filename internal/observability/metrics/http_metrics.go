package metrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records per-route request counts and latency.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewHTTPMetrics(cfg Config, provider metric.MeterProvider) (*HTTPMetrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "arkloyalty"
	}
	meter := provider.Meter(name)

	requests, err := meter.Int64Counter("arkloyalty_http_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("arkloyalty_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

func (h *HTTPMetrics) Record(ctx context.Context, route string, status int, elapsed time.Duration) {
	if h == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	h.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	h.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// GinMiddleware records request metrics keyed by the matched route template
// so unmatched paths cannot blow up label cardinality.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.Record(c.Request.Context(), route, c.Writer.Status(), time.Since(start))
	}
}
