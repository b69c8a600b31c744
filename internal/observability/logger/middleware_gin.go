package logger

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obscontext "github.com/smallbiznis/hydrolink/internal/observability/context"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// MiddlewareConfig configures the request logging middleware. Both fields
// are optional: without a node request IDs fall back to timestamps, without
// a logger requests are not logged but still tagged.
type MiddlewareConfig struct {
	Log  *zap.Logger
	Node *snowflake.Node
}

// GinMiddleware tags every request with an ID, exposes it on the response,
// and logs the request outcome with sensitive headers masked.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := newRequestID(cfg.Node)
		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set("X-Request-Id", id)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		fields = append(fields, TraceFields(c.Request.Context())...)
		if log.Core().Enabled(zap.DebugLevel) {
			fields = append(fields, zap.Any("headers", MaskHeaders(c.Request.Header)))
		}
		log.Info("http request", fields...)
	}
}

func newRequestID(node *snowflake.Node) string {
	if node != nil {
		return node.Generate().String()
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
