// Package auth resolves the authenticated principal of a request.
//
// Sign-in itself happens in an upstream identity-aware proxy, which forwards the
// verified principal in request headers. This package lifts those headers into the
// request context and exposes the identity through domain.IdentityResolver.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/shubhams167/aura/internal/domain"
)

type contextKey struct{}

// DefaultHeaderPrefix is the header prefix used when none is configured
const DefaultHeaderPrefix = "X-Auth-User"

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, if any
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}

// ContextResolver implements domain.IdentityResolver over the request context
type ContextResolver struct{}

// ResolveCurrentIdentity returns the id of the principal in ctx
func (ContextResolver) ResolveCurrentIdentity(ctx context.Context) (domain.UserIdentity, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", false
	}
	return p.ID, true
}

var _ domain.IdentityResolver = ContextResolver{}

// HeaderMiddleware reads "<prefix>-Id", "<prefix>-Email", "<prefix>-Name" and
// "<prefix>-Image" and stores the principal in the request context. Requests
// without an id header pass through anonymously; operations that need an
// identity reject them later.
func HeaderMiddleware(prefix string) func(http.Handler) http.Handler {
	if prefix == "" {
		prefix = DefaultHeaderPrefix
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(prefix + "-Id"))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			p := domain.Principal{
				ID:    domain.UserIdentity(id),
				Email: strings.TrimSpace(r.Header.Get(prefix + "-Email")),
				Name:  strings.TrimSpace(r.Header.Get(prefix + "-Name")),
				Image: strings.TrimSpace(r.Header.Get(prefix + "-Image")),
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
