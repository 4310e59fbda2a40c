package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/albumkit/internal/handlers"
	"github.com/serroba/albumkit/internal/ratelimit"
	"go.uber.org/zap"
)

// Quota returns a Huma middleware that caps requests per client within a
// sliding window.
func Quota(api huma.API, quota *ratelimit.Quota, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		decision, err := quota.Allow(ctx.Context(), clientKey(ctx))
		if err != nil {
			logger.Error("quota check failed", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			logger.Warn("quota exceeded",
				zap.String("path", operationPath(ctx)),
				zap.String("method", ctx.Method()),
				zap.Int64("count", decision.Count),
				zap.Int64("limit", decision.Limit),
				zap.Duration("window", decision.Window),
				zap.String("client_ip", clientIP(ctx)),
			)
			ctx.SetHeader("Retry-After", strconv.Itoa(int(decision.Window.Seconds())))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// SessionThrottle returns a Huma middleware that lets one request per session
// through each throttle window on operations marked with
// handlers.MetadataSessionThrottle. Requests inside an open window get 429.
func SessionThrottle(
	api huma.API,
	registry *ratelimit.Registry,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil || op.Metadata[handlers.MetadataSessionThrottle] != true {
			next(ctx)

			return
		}

		session := ctx.Header(HeaderSessionID)
		if session == "" {
			// Input validation rejects the request.
			next(ctx)

			return
		}

		passed := false

		registry.Call(session+"|"+op.OperationID, func() {
			passed = true
		})

		if !passed {
			logger.Info("duplicate request throttled",
				zap.String("session", session),
				zap.String("operation", op.OperationID),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "duplicate request, retry later")

			return
		}

		next(ctx)
	}
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// clientKey identifies a client by IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
