package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/server/identity"
)

type contextKey string

const identityContextKey contextKey = "identity"

// BearerAuth verifies the bearer JWT and stores the extracted identity on
// the request context.
func BearerAuth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get(common.AuthorizationHeaderName)
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}

			id, err := identity.FromToken(auth[len(prefix):], secretKey)
			if err != nil {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromContext(ctx context.Context) identity.Identity {
	id, _ := ctx.Value(identityContextKey).(identity.Identity)
	return id
}
