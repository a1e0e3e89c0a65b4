package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
)

// authentication checks the bearer API key against the configured bcrypt
// hash. With no hash configured the check is skipped.
func (server *Server) authentication(c *gin.Context) {
	if server.config.APIKeyHash == "" {
		c.Next()
		return
	}

	authorizationHeader := c.GetHeader(authorizationHeaderKey)
	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}
	if strings.ToLower(fields[0]) != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("unsupported authorization type")))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(server.config.APIKeyHash), []byte(fields[1])); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API key")))
		return
	}

	c.Next()
}

var (
	limitersMu sync.Mutex
	limiters   = make(map[string]*rate.Limiter)
)

// getLimiter returns the per-client limiter, creating it on first use.
// Monte Carlo calls are the expensive ones, so only those routes use it.
func getLimiter(client string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()
	limiter, ok := limiters[client]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 2)
		limiters[client] = limiter
	}
	return limiter
}

func (server *Server) rateLimited(c *gin.Context) {
	if !getLimiter(c.ClientIP()).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": http.StatusTooManyRequests, "msg": "Too Many Requests"})
		return
	}
	c.Next()
}
