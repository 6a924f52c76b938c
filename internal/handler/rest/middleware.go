package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/metrics"
	"dns-manager-backend/internal/usecase"
	"dns-manager-backend/pkg/auth"
)

const (
	CorrelationIDKey = "X-CORRELATION-ID"
	claimsKey        = "claims"
)

// CorrelationIDMiddleware tags every request with an id, reusing the caller's when sent
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDKey)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Header(CorrelationIDKey, correlationID)
		c.Set(CorrelationIDKey, correlationID)
		c.Next()
	}
}

// LoggingMiddleware logs one line per request. Bodies are never logged,
// they carry passwords and tokens.
func LoggingMiddleware(lg *zap.Logger, excludePaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lo.Contains(excludePaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		startTime := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("correlationID", c.GetString(CorrelationIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("url", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			lg.Error("[HTTP]", fields...)
			return
		}
		lg.Info("[HTTP]", fields...)
	}
}

// MetricsMiddleware counts requests by route template and status
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// AuthMiddleware verifies the Authorization header and stores the claims
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authUsecase.VerifyToken(auth.ExtractToken(c.GetHeader("Authorization")))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *domain.TokenClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.TokenClaims)
	return claims
}

// callerID returns the authenticated user's id, or ""
func callerID(c *gin.Context) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.ID
	}
	return ""
}
