// Package middleware provides the gin middleware shared by all routes.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/zlog"

	"eventman/internal/dto"
	"eventman/internal/monitoring"
	"eventman/pkg/token"
)

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		monitoring.HTTPDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// AuthRequired resolves the bearer token and places the identity claim in
// the request context. Requests without a valid token never reach the
// protected handler.
func AuthRequired(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			unauthenticated(c, "Missing bearer token")
			return
		}

		claims, err := tokens.Resolve(raw)
		if err != nil {
			unauthenticated(c, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", string(claims.Role))
		c.Next()
	}
}

func unauthenticated(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.Response{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    message,
		Data:       nil,
	})
	c.Abort()
}
