package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/golang-jwt/jwt/v4"
)

const bearerSchema = "Bearer "

// Authenticate проверяет HS256 bearer-токен и кладёт Actor в контекст запроса.
func Authenticate(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerSchema) {
				writeFail(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerSchema), claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil {
				var ve *jwt.ValidationError
				if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
					writeFail(w, http.StatusUnauthorized, "token has expired")
					return
				}
				logger.Debug("token rejected", slog.Any("error", err))
				writeFail(w, http.StatusUnauthorized, "invalid token")
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				logger.Debug("token claims rejected", slog.Any("error", err))
				writeFail(w, http.StatusUnauthorized, "invalid token claims")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole пропускает только вызывающих с одной из ролей. Ставится после Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeFail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeFail(w, http.StatusForbidden, "you do not have permission to perform this action")
		})
	}
}
