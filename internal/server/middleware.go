package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"
)

const requestIDHeader = "X-Request-ID"

// observabilityMiddleware opens a span per request and logs its latency. The
// request context carries a fresh run id so pipeline logs and spans correlate;
// the caller's X-Request-ID, or a generated one, becomes the log id.
func observabilityMiddleware(tracer *observability.TracerProvider, logger logging.Logger) gin.HandlerFunc {
	if tracer == nil {
		tracer = observability.NoopTracer()
	}
	return func(c *gin.Context) {
		start := time.Now()
		logID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if logID == "" {
			logID = id.NewLogID()
		}
		c.Header(requestIDHeader, logID)
		ctx := id.WithLogID(c.Request.Context(), logID)
		ctx = id.WithRunID(ctx, id.NewRunID())
		ctx, span := tracer.StartSpan(ctx, observability.SpanHTTPServer,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
			attribute.String("http.request_id", logID),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		var err error
		if status >= http.StatusInternalServerError {
			err = errors.New(http.StatusText(status))
		}
		observability.EndSpan(span, err)
		logger.Debug("[%s] %s %s -> %d (%s)", logID, c.Request.Method, route, status, time.Since(start))
	}
}

// jsonMiddleware rejects write requests that are not JSON.
func jsonMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost {
			contentType := c.GetHeader("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, apiErrorResponse{
					Error: "Content-Type must be application/json",
				})
				return
			}
		}
		c.Next()
	}
}
