package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type AuthMiddlewareHandler struct {
	checker              auth.Checker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(checker auth.Checker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		checker: checker,
		allowedPaths: map[string]bool{
			"/":            true,
			"/version":     true,
			"/auth/login":  true,
			"/auth/logout": true,
		},
		allowedPathsPrefixes: []string{
			"/catalog/",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthCheck resolves the session token into the request identity. Requests
// without a valid session are rejected unless the path is public.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(auth.TokenHeader)
			if token == "" {
				unauthorized(w, span, "missing-auth-token")
				log.Tracef("[auth] no token => %s", r.URL.Path)
				return
			}

			id, ok, err := h.checker.Identity(ctx, token)
			if err != nil {
				span.RecordError(err)
				unauthorized(w, span, "session-lookup-failed")
				log.Errorf("[auth] session lookup => %s: %s", r.URL.Path, err)
				return
			}
			if !ok {
				unauthorized(w, span, "unknown-session")
				log.Tracef("[auth] unknown or expired session => %s", r.URL.Path)
				return
			}

			span.SetAttributes(attribute.String("user.id", id.UserID.String()))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, span trace.Span, reason string) {
	span.SetStatus(codes.Error, reason)
	http.Error(w, "no can do", http.StatusUnauthorized)
}

// AdminOnly lets through requests whose identity carries the admin flag.
func AdminOnly() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || auth.IsAdmin(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warnf("[admin only] user %s denied => %s", auth.UserIDFromContext(r.Context()), r.URL.Path)
			apperr.Respond(w, "admin", apperr.New("admin", apperr.ErrForbidden, "admin only"))
		})
	}
}
