package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/config"
)

// requiredHeaders are accepted on every cross-origin request whatever the
// configuration says. Last-Event-ID lets the change stream resume.
var requiredHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, "Last-Event-ID"}

// corsConfig builds the gin-contrib/cors configuration
func corsConfig(cfg *config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  mergeHeaders(cfg.AllowedHeaders, "Accept", "Origin", "X-Request-ID"),
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID", "X-Idempotency-Replayed", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			// Credentials cannot be combined with a wildcard origin.
			c.AllowOrigins = nil
			c.AllowAllOrigins = true
			break
		}
	}
	c.AllowCredentials = !c.AllowAllOrigins

	if len(c.AllowMethods) == 0 {
		c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	return c
}

// mergeHeaders returns configured plus defaults (when nothing is configured)
// plus requiredHeaders, without duplicates
func mergeHeaders(configured []string, defaults ...string) []string {
	base := configured
	if len(base) == 0 {
		base = defaults
	}
	seen := make(map[string]bool, len(base)+len(requiredHeaders))
	out := make([]string, 0, len(base)+len(requiredHeaders))
	for _, h := range append(append([]string{}, base...), requiredHeaders...) {
		key := http.CanonicalHeaderKey(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}
