package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/redis/go-redis/v9"
)

// middlewareThrottle applies a fixed-window request limit per client IP and
// route, counted in redis so all instances share the budget. The limiter
// fails open: a redis outage must not take authentication down with it.
func middlewareThrottle(cfg config.Config, client redis.Cmdable) Middleware {
	var (
		enabled bool
		limit   int64
		window  time.Duration
	)
	if cfg != nil {
		enabled = cfg.GetBool("app.server.throttle.enabled")
		limit = cfg.GetInt64("app.server.throttle.limit")
		window = cfg.GetSecond("app.server.throttle.window_seconds")
	}
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(next http.Handler) http.Handler {
		if !enabled || client == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "throttle:" + matchedRoutePath(r) + ":" + r.RemoteAddr

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(r.Context(), key, window).Err(); err != nil {
					slog.WarnContext(r.Context(), "rate limiter expire failed", "error", err)
				}
			}

			if count > limit {
				writeJSON(w, errorResponse{Message: "Too many requests. Please try again later."}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
