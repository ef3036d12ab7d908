/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L4
Logic:       API key authentication middleware extracting Bearer
             tokens from the Authorization header and resolving each
             key to a caller name from the configured key set.
Root Cause:  Sprint task T012 — API key authentication middleware.
Context:     Security-critical; every Chat/cache/report request must
             carry an attributable caller before it reaches the
             orchestrator, since that caller name is what rate
             limiting and telemetry key off of.
Suitability: L4 model required for auth middleware design.
──────────────────────────────────────────────────────────────
*/

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	// APIKeyContextKey stores the raw API key in request context.
	APIKeyContextKey contextKey = "api_key"
	// CallerIDContextKey stores the resolved caller name in request
	// context — the identity rate limiting and telemetry attribute a
	// request to.
	CallerIDContextKey contextKey = "caller_id"
)

// AuthMiddleware resolves each request's API key to a caller name.
// When no key set is configured it runs in open mode, accepting every
// request as the "anonymous" caller — useful for local/dev runs where
// the advisor sits behind another auth layer already.
type AuthMiddleware struct {
	logger    zerolog.Logger
	keys      map[string]string
	headerKey string
}

// NewAuthMiddleware creates a new authentication middleware. keys maps
// an API key to the caller name it resolves to; a nil/empty map
// disables key checking entirely.
func NewAuthMiddleware(logger zerolog.Logger, headerKey string, keys map[string]string) *AuthMiddleware {
	if headerKey == "" {
		headerKey = "Authorization"
	}
	return &AuthMiddleware{
		logger:    logger,
		keys:      keys,
		headerKey: headerKey,
	}
}

// Handler returns the middleware handler function.
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(am.keys) == 0 {
			ctx := context.WithValue(r.Context(), CallerIDContextKey, "anonymous")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get(am.headerKey)
		if authHeader == "" {
			http.Error(w, `{"error":"missing authentication","message":"Authorization header required"}`, http.StatusUnauthorized)
			return
		}

		apiKey := authHeader
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			apiKey = authHeader[7:]
		}

		if apiKey == "" {
			http.Error(w, `{"error":"invalid authentication","message":"API key cannot be empty"}`, http.StatusUnauthorized)
			return
		}

		caller, ok := am.keys[apiKey]
		if !ok {
			http.Error(w, `{"error":"invalid authentication","message":"API key not recognized"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), APIKeyContextKey, apiKey)
		ctx = context.WithValue(ctx, CallerIDContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAPIKey extracts the raw API key from the request context.
func GetAPIKey(ctx context.Context) string {
	if v, ok := ctx.Value(APIKeyContextKey).(string); ok {
		return v
	}
	return ""
}

// GetCallerID extracts the resolved caller name from the request
// context, defaulting to "anonymous" when auth ran in open mode.
func GetCallerID(ctx context.Context) string {
	if v, ok := ctx.Value(CallerIDContextKey).(string); ok {
		return v
	}
	return "anonymous"
}
