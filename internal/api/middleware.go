package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/RishiKendai/eduscore/internal/metrics"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

const (
	ctxAPIKey = "api_key"
	ctxTenant = "tenant_id"
	ctxUser   = "user_id"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JWTAuthMiddleware validates HMAC signed bearer tokens and exposes the
// tenant and subject claims to handlers.
func JWTAuthMiddleware(secret, issuer string) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if apiKey, ok := claims["api_key"].(string); ok {
			c.Set(ctxAPIKey, apiKey)
		} else {
			c.Set(ctxAPIKey, tokenString)
		}
		if tenant, ok := claims["tenant_id"].(string); ok && tenant != "" {
			c.Set(ctxTenant, tenant)
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			c.Set(ctxUser, sub)
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error: msg,
		Code:  "UNAUTHORIZED",
	})
}

// tenantFrom returns the caller's tenant, or the default tenant for tokens
// without a tenant claim.
func tenantFrom(c *gin.Context) string {
	if tenant := c.GetString(ctxTenant); tenant != "" {
		return tenant
	}
	return plagiarism.DefaultTenant
}

// RateLimiter manages rate limiting per API key
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rps      float64
	burst    int
	idleTTL  time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rps,
		burst:    max(1, burst),
		idleTTL:  time.Hour,
	}
}

// GetLimiter gets or creates a limiter for an API key. Limiters idle for
// longer than idleTTL are evicted on access.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, e := range rl.limiters {
		if now.Sub(e.lastSeen) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ctxAPIKey)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.GetLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "Rate limit exceeded",
				Code:  "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		c.Next()
	}
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ErrorHandlerMiddleware renders errors attached with c.Error
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request error")

			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: err.Error(),
				Code:  "INTERNAL_ERROR",
			})
		}
	}
}
