package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/live-event-checkin/internal/config"
)

// ResponseCache returns a middleware that caches successful GET responses
// in Redis for the configured TTL. It fronts only the public ongoing-events
// listing; display payloads carry rotating tokens and are never cached.
// Cache entries store the content type alongside the body, separated by a
// newline, keeping the value format trivial to inspect in redis-cli. When
// caching is disabled or Redis is unavailable the middleware is a
// pass-through, and Redis errors fail open.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)
			ctx := c.Request().Context()

			if cached, err := rdb.Get(ctx, key).Result(); err == nil {
				contentType, body, found := strings.Cut(cached, "\n")
				if found {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, contentType, []byte(body))
				}
			}

			// Capture the downstream response body so it can be stored.
			rec := &captureWriter{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}

			if c.Response().Status == http.StatusOK && rec.buf.Len() <= cfg.MaxBodyBytes {
				contentType := c.Response().Header().Get(echo.HeaderContentType)
				entry := contentType + "\n" + rec.buf.String()
				// Best effort: a failed SET only means the next request misses.
				rdb.Set(ctx, key, entry, cfg.TTL)
			}
			return nil
		}
	}
}

// cacheKey builds the Redis key from route and query so distinct query
// strings cache independently.
func cacheKey(prefix string, c echo.Context) string {
	key := prefix + ":" + c.Path()
	if q := c.Request().URL.RawQuery; q != "" {
		key += "?" + q
	}
	return key
}

// captureWriter duplicates response bytes into a buffer while writing them
// through to the client.
type captureWriter struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
