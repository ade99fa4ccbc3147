package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// UserProvider описывает интерфейс чтения пользователя для проверки
// командного доступа.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// TeamAccessMiddleware пропускает только пользователей с выданным
// командным доступом. Ставится перед операциями, требующими членства
// в команде Canva.
func TeamAccessMiddleware(log *slog.Logger, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.GetUser(r.Context(), userUID)
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !user.TeamAccess {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("team access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
