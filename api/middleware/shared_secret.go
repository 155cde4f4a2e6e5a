package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/umarxon/delivera-backend/api/responses"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

const opsSecretHeader = "X-Ops-Secret"

// SharedSecret guards the operator endpoints with a static secret header.
func SharedSecret(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if secret == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ops secret not configured"))
				return
			}
			provided := r.Header.Get(opsSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid ops secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
