package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	httperrors "3tcapital/ms_numeracion_core/internal/infrastructure/http"
)

func tokenFrom(ctx context.Context) (*jwt.Token, bool) {
	token, ok := ctx.Value(ContextKeyToken{}).(*jwt.Token)
	return token, ok && token != nil
}

// Subject returns the "sub" claim of the verified token in ctx, or "" when the
// request was not authenticated.
func Subject(ctx context.Context) string {
	token, ok := tokenFrom(ctx)
	if !ok {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Scopes returns the scopes granted to the verified token in ctx. Both the
// space-delimited "scope" claim and the "scp" list form are read.
func Scopes(ctx context.Context) []string {
	token, ok := tokenFrom(ctx)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	var scopes []string
	if raw, ok := claims["scope"].(string); ok {
		scopes = append(scopes, strings.Fields(raw)...)
	}
	switch scp := claims["scp"].(type) {
	case string:
		scopes = append(scopes, strings.Fields(scp)...)
	case []any:
		for _, v := range scp {
			if s, ok := v.(string); ok {
				scopes = append(scopes, s)
			}
		}
	}
	return scopes
}

// RequireScope rejects authenticated requests whose token lacks scope.
// Requests without a token (authentication disabled or bypassed) and an
// empty scope pass through.
func RequireScope(scope string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if scope == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := tokenFrom(r.Context()); !ok {
				next.ServeHTTP(w, r)
				return
			}
			if !slices.Contains(Scopes(r.Context()), scope) {
				if log != nil {
					log.Warn("missing required scope", "path", r.URL.Path, "scope", scope, "subject", Subject(r.Context()))
				}
				httperrors.WriteError(w, http.StatusForbidden, "Acceso denegado", []string{"No tiene permisos para modificar la configuración de numeración"}, log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
