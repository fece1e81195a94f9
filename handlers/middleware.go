package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"auditease-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// HeaderUserID carries the authenticated user's id, set by the auth proxy
	HeaderUserID = "X-User-ID"
	// HeaderUserEmail carries the authenticated user's email
	HeaderUserEmail = "X-User-Email"

	callerKey = "auditease.caller"
)

// Identity reads the caller from the request headers and rejects requests
// without a valid user id
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(strings.TrimSpace(c.GetHeader(HeaderUserID)))
		if err != nil {
			respondFail(c, http.StatusUnauthorized, "UNAUTHORIZED", "A valid "+HeaderUserID+" header is required")
			return
		}
		c.Set(callerKey, service.Caller{
			UserID: userID,
			Email:  strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserEmail))),
		})
		c.Next()
	}
}

// callerFrom returns the caller stored by Identity
func callerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}

// RequestLogger logs one line per request, including errors attached by handlers
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if caller := callerFrom(c); caller.UserID != uuid.Nil {
			fields = append(fields, zap.String("user_id", caller.UserID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// idleLimiterTTL is how long an unused limiter is kept
const idleLimiterTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per user
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	users     map[uuid.UUID]*userLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per user
// with the given burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit: rate.Limit(rps),
		burst: burst,
		users: make(map[uuid.UUID]*userLimiter),
		now:   time.Now,
	}
}

// Allow reports whether the user may make another request now
func (l *RateLimiter) Allow(userID uuid.UUID) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for id, u := range l.users {
			if now.Sub(u.lastSeen) > idleLimiterTTL {
				delete(l.users, id)
			}
		}
		l.lastSweep = now
	}

	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the caller's limit with 429. It must run
// after Identity.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(callerFrom(c).UserID) {
			c.Header("Retry-After", "1")
			respondFail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please slow down")
			return
		}
		c.Next()
	}
}
