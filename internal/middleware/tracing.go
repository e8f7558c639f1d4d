package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin and tags the request span with the tenant, the acting user
// and the request id once the handler chain has run.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if tenantID := c.Param("tenant_id"); tenantID != "" {
			span.SetAttributes(attribute.String("tenant_id", tenantID))
		}
		if userID, ok := GetUserIDFromContext(c); ok {
			span.SetAttributes(attribute.String("user_id", userID))
		}
		if requestID := c.Writer.Header().Get(requestIDHeader); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
	}
}
