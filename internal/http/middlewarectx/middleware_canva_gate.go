package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// TokenGate прогоняет каскад проверки-обновления Canva-токена пользователя.
type TokenGate interface {
	ValidateAndRefresh(ctx context.Context, userUID string) (string, error)
}

// CanvaGateMiddleware проверяет работоспособность Canva-токена перед
// действиями редактирования и кладет действительный access-токен
// в контекст запроса. При невосстановимом сбое токена учетные данные
// уже сброшены каскадом, клиенту остаётся переподключиться.
func CanvaGateMiddleware(log *slog.Logger, gate TokenGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			accessToken, err := gate.ValidateAndRefresh(r.Context(), userUID)
			if err != nil {
				log.Error("canva token validation failed", sl.Err(err))
				render.Status(r, response.StatusFor(err))
				render.JSON(w, r, response.Error("canva reconnection required"))
				return
			}

			ctx := context.WithValue(r.Context(), CanvaToken, accessToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
