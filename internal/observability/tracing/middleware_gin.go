package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
)

// GinMiddleware extracts incoming W3C trace context so handler logs carry the
// caller's trace and span IDs.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
