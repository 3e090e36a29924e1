package auth

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware requires a bearer token matching the configured bcrypt hash.
type AdminMiddleware struct {
	tokenHash string
	limiter   *RateLimiter
}

// NewAdminMiddleware creates the middleware. limiter may be nil.
func NewAdminMiddleware(tokenHash string, limiter *RateLimiter) *AdminMiddleware {
	return &AdminMiddleware{tokenHash: strings.TrimSpace(tokenHash), limiter: limiter}
}

// Enabled reports whether an admin token hash is configured.
func (m *AdminMiddleware) Enabled() bool {
	return m.tokenHash != ""
}

func (m *AdminMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() {
			abort(c, http.StatusInternalServerError, "admin access is not configured", "CONFIGURATION")
			return
		}

		ip := c.ClientIP()
		if m.limiter != nil {
			if ok, retryAfter := m.limiter.Allow(ip); !ok {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				abort(c, http.StatusTooManyRequests, "too many failed attempts", "RATE_LIMITED")
				return
			}
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || CheckToken(token, m.tokenHash) != nil {
			if m.limiter != nil {
				if locked, _ := m.limiter.RecordFailure(ip); locked {
					log.Printf("[AUTH] Admin access locked for %s after repeated failures", ip)
				}
			}
			abort(c, http.StatusUnauthorized, "authentication required", "UNAUTHORIZED")
			return
		}

		if m.limiter != nil {
			m.limiter.RecordSuccess(ip)
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
