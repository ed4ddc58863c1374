package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
)

const (
	// TokenHeader is the header name for the API token.
	TokenHeader = "X-Player-Token"
	// tokenQuery carries the token for clients that cannot set headers,
	// such as browser EventSource.
	tokenQuery = "token"
)

// RequestLogger returns a middleware that logs every request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		zlog.Info().Msgf("http request: method=%s path=%s status=%d duration=%s client_ip=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())

		if len(c.Errors) > 0 {
			zlog.Error().Msgf("request completed with errors: path=%s errors=%v", path, c.Errors.Errors())
		}
	}
}

// TokenAuth returns a middleware that validates the API token.
// An empty token disables authentication.
func TokenAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got := c.GetHeader(TokenHeader)
		if got == "" {
			got = c.Query(tokenQuery)
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthenticated",
				Message: "missing or invalid " + TokenHeader,
			})
			return
		}
		c.Next()
	}
}
