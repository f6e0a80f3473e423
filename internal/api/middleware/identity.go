package middleware

import (
	"context"
	"net/http"

	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityResolver resolves the acting user for a request. Authentication is
// out of scope here; the default resolver trusts the X-User-ID header the
// auth gateway sets.
type IdentityResolver interface {
	ResolveOwner(r *http.Request) (model.Identity, bool)
}

// HeaderIdentityResolver reads the identity from the X-User-ID header.
type HeaderIdentityResolver struct{}

// ResolveOwner returns the identity from the header, and false when absent.
func (HeaderIdentityResolver) ResolveOwner(r *http.Request) (model.Identity, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return model.Identity{}, false
	}
	return model.Identity{UserID: userID}, true
}

// Identity returns a middleware that stores the resolved identity on the
// request context. Requests without one proceed anonymously; handlers that
// need an identity reject them.
func Identity(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := resolver.ResolveOwner(r); ok {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom extracts the identity stored on the context, if any.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}
