package server

import (
	"time"

	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
	"github.com/Brownie44l1/staticd/internal/router"
)

// LoggingMiddleware logs every dispatched request
func LoggingMiddleware(logger Logger) router.Middleware {
	return func(next router.Handler) router.Handler {
		return func(req *request.Request) response.Response {
			start := time.Now()

			res := next(req)

			log := logger.Info
			if res.Status.IsError() {
				log = logger.Warn
			}
			log("request handled",
				Field{"method", req.Method},
				Field{"target", req.Target},
				Field{"status", int(res.Status)},
				Field{"body_bytes", len(res.Body)},
				Field{"duration_ms", time.Since(start).Milliseconds()},
			)
			return res
		}
	}
}

// MetricsMiddleware records request metrics
func MetricsMiddleware(metrics *Metrics) router.Middleware {
	return func(next router.Handler) router.Handler {
		return func(req *request.Request) response.Response {
			start := time.Now()

			res := next(req)

			metrics.RecordRequest(res.Status, time.Since(start))
			return res
		}
	}
}
