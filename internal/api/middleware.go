package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/mediaserver"
)

// requestIDMiddleware adds a unique request ID to each request and to the
// request context, so calls to the media server carry the same id.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(mediaserver.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(mediaserver.RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// loggingMiddleware logs one line per request
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).WarnContext(c.Request.Context(), "request failed")
			return
		}
		log.WithFields(fields).DebugContext(c.Request.Context(), "request served")
	}
}

// errorHandlerMiddleware handles panics and errors
func errorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(map[string]interface{}{
					"panic": rec,
					"path":  c.Request.URL.Path,
				}).ErrorContext(c.Request.Context(), "panic while serving request", nil)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "internal server error",
					Message:   "an unexpected error occurred",
					RequestID: c.GetString("request_id"),
				})
			}
		}()
		c.Next()
	}
}

// corsMiddleware lets the browser front end call the view server
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", mediaserver.RequestIDHeader}
	cfg.ExposeHeaders = []string{mediaserver.RequestIDHeader}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
