package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/context"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
)

// CORS allows any origin and answers preflight requests directly.
// Preflight requests terminate here with a bare 200.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}

		c.Next()
	}
}

// UserRequired authenticates requests with a bearer token looked up by its
// sha256 digest in api_tokens. The matched user id becomes the owner for
// every downstream read and write. Failures go through the API error
// envelope.
func (s *Server) UserRequired() gin.HandlerFunc {
	return s.requireUser(func(c *gin.Context, err error) {
		AbortWithError(c, err)
	})
}

// FunctionUserRequired authenticates the scoring function routes, which
// answer failures with a bare {"error": <string>} payload instead of the
// API error envelope.
func (s *Server) FunctionUserRequired() gin.HandlerFunc {
	return s.requireUser(func(c *gin.Context, err error) {
		if errors.Is(err, ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	})
}

func (s *Server) requireUser(reject func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			reject(c, ErrUnauthorized)
			return
		}

		hash := hashToken(token)

		var record struct {
			ID        snowflake.ID `gorm:"column:id"`
			UserID    snowflake.ID `gorm:"column:user_id"`
			TokenHash string       `gorm:"column:token_hash"`
		}

		if err := s.db.WithContext(c.Request.Context()).Raw(
			`SELECT id, user_id, token_hash
			 FROM api_tokens
			 WHERE token_hash = ?
			   AND is_active = true
			 LIMIT 1`,
			hash,
		).Scan(&record).Error; err != nil {
			reject(c, err)
			return
		}

		if record.ID == 0 || subtle.ConstantTimeCompare([]byte(record.TokenHash), []byte(hash)) != 1 {
			reject(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		ctx = usercontext.WithUserID(ctx, record.UserID)
		ctx = obscontext.WithUserID(ctx, record.UserID.String())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ServiceTokenGuard protects the batch recalculation endpoint. When no
// service token is configured the endpoint stays open for platform cron
// invocation; otherwise the caller must present the shared token.
func (s *Server) ServiceTokenGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.ServiceToken
		if expected == "" {
			c.Next()
			return
		}

		token, _ := bearerToken(c)
		if token == "" {
			token = strings.TrimSpace(c.GetHeader("X-Service-Token"))
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}

	return parts[1], true
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
