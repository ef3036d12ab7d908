/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Advisor HTTP router with middleware chain:
             CORS → Security Headers → Request ID → Recoverer →
             Request Logger → Body Size Limit → Auth → Rate Limit
             → Header Normalization → Timeout → routes.
             Routes: /v1/chat, /v1/health, /v1/cache(/{agent}(/{fp})),
             /healthz, /ready.
Root Cause:  Sprint tasks — Advisor HTTP Surface.
Context:     Mirrors the gateway's NewRouter wiring order; the
             business routes underneath are entirely different since
             this service answers EOL questions instead of proxying
             chat completions.
Suitability: L3 model for middleware chain + route wiring.
──────────────────────────────────────────────────────────────
*/

// Package httpapi exposes the orchestrator over HTTP: the Chat
// endpoint, a provider health snapshot, and the cache purge surface,
// behind the same middleware chain.
package httpapi

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/config"
	advmw "github.com/vigil-eol/advisor/middleware"
	"github.com/vigil-eol/advisor/orchestrator"
)

// NewRouter returns a configured chi Router with the full middleware
// chain and every route mounted.
func NewRouter(cfg *config.Config, appLogger zerolog.Logger, orch *orchestrator.Orchestrator) http.Handler {
	r := chi.NewRouter()

	r.Use(advmw.CORSMiddleware([]string{"*"}))
	r.Use(advmw.SecurityHeadersMiddleware)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mwRequestLogger(appLogger))
	r.Use(mwMaxBodySize(cfg.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "eoladvisor"})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": "eoladvisor"})
	})

	chatHandler := NewChatHandler(appLogger, orch)
	healthHandler := NewHealthHandler(orch)
	cacheHandler := NewCacheHandler(appLogger, orch)

	authMW := advmw.NewAuthMiddleware(appLogger, cfg.APIKeyHeader, cfg.APIKeys)
	rateLimiter := advmw.NewRateLimiter(appLogger, cfg.RateLimitEnabled, cfg.RateLimitRPM, cfg.RateLimitBurst)
	headerNorm := advmw.NewHeaderNormalization(appLogger)
	timeoutMW := advmw.NewTimeoutMiddleware(appLogger, cfg)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW.Handler)
		r.Use(rateLimiter.Handler)
		r.Use(headerNorm.Handler)
		r.Use(timeoutMW.Handler)

		r.Post("/chat", chatHandler.Chat)
		r.Get("/health", healthHandler.Health)

		r.Delete("/cache", cacheHandler.PurgeAll)
		r.Delete("/cache/{agent}", cacheHandler.PurgeAgent)
		r.Delete("/cache/{agent}/{fingerprint}", cacheHandler.PurgeEntry)
	})

	return r
}

func mwMaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 1 * 1024 * 1024
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			max := maxBytes
			if v := os.Getenv("EOLADVISOR_MAX_BODY_BYTES"); v != "" {
				if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
					max = parsed
				}
			}
			if r.ContentLength > 0 && r.ContentLength > max {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request_too_large"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}

func mwRequestLogger(appLogger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)
			appLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("req_id", chimw.GetReqID(r.Context())).
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
