package middleware

import (
	"net/http"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SecretHeader = "X-Tracker-Secret"

// SecretChecker guards the state-changing routes. Safe methods are let through,
// everything else needs the control secret in the X-Tracker-Secret header.
type SecretChecker struct {
	secretHash string
}

func NewSecretChecker(secretHash string) *SecretChecker {
	return &SecretChecker{
		secretHash: secretHash,
	}
}

func (c *SecretChecker) methodIsAlwaysAllowed(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return true
	default:
		return false
	}
}

func (c *SecretChecker) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if c.methodIsAlwaysAllowed(r.Method) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			secret := r.Header.Get(SecretHeader)
			if secret == "" {
				log.Tracef("[missing secret] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-secret")
				return
			}

			if !pkg.CheckSecretHash(secret, c.secretHash) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid secret] [auth middleware] unauthorized => %s, from %s", r.URL.Path, reqIp)
				pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-secret")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
