package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/altezzai/storefront-backend/api/responses"
	pkgauth "github.com/altezzai/storefront-backend/pkg/auth"
	"github.com/altezzai/storefront-backend/pkg/config"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/logger"
)

const guestTokenHeader = "X-Guest-Token"

type guestTokenValidator interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
}

// CartAuth authenticates either a signed-in user (bearer token) or an
// anonymous guest (X-Guest-Token). A bearer token wins when both are sent.
func CartAuth(cfg config.JWTConfig, guests guestTokenValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				claims, err := pkgauth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				ctx := WithUserID(r.Context(), claims.UserID.String())
				ctx = WithRole(ctx, string(claims.Role))
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"user_id":    claims.UserID.String(),
						"actor_role": string(claims.Role),
					})
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			guestToken := strings.TrimSpace(r.Header.Get(guestTokenHeader))
			if guestToken == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if guests == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "guest token service unavailable"))
				return
			}

			ok, err := guests.ValidateToken(r.Context(), guestToken)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate guest token"))
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "guest token expired or unknown"))
				return
			}

			ctx := WithGuestToken(r.Context(), guestToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
