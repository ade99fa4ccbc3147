// Package designs реализует HTTP-обработчик выдачи дизайнов пользователя
// из Canva. Бизнес-логика прогоняет каскад проверки токена и при
// недоступности brand-шаблонов переключается на список дизайнов.
package designs

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/canva"
	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// Handler обрабатывает запросы на выдачу дизайнов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи дизайнов.
type Service interface {
	ListDesigns(ctx context.Context, userUID string, limit int, search string) (*canva.Listing, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Дизайны пользователя в Canva
// @Tags Canva
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param search query string false "Поиск по названию"
// @Success 200 {object} map[string]any "Список дизайнов"
// @Failure 401 {object} response.ErrorResponse "Требуется переподключение Canva"
// @Router /canva/designs [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.canva.designs"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	listing, err := h.service.ListDesigns(r.Context(), userUID, limit, r.URL.Query().Get("search"))
	if err != nil {
		log.Error("failed to list designs", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not list designs"))
		return
	}

	log.Info("designs listed", slog.Int("count", len(listing.Items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"designs": listing.Items,
	}))
}
