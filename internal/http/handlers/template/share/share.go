// Package share реализует HTTP-обработчик выдачи ссылки на редактирование
// шаблона в Canva. Маршрут защищён шлюзом проверки Canva-токена: сюда
// попадают только запросы с работоспособным подключением.
package share

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// Handler обрабатывает запросы на получение ссылки редактирования.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики выдачи ссылки.
type Service interface {
	ShareURL(ctx context.Context, userUID, templateID string) (string, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Ссылка на редактирование шаблона
// @Description Возвращает ссылку на редактирование шаблона в Canva и фиксирует действие.
// @Tags Templates
// @Produce  json
// @Param id path string true "ID шаблона"
// @Success 200 {object} map[string]any "Ссылка на редактирование"
// @Failure 401 {object} response.ErrorResponse "Требуется переподключение Canva"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Router /templates/{id}/share-url [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.share"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	templateID := chi.URLParam(r, "id")

	url, err := h.service.ShareURL(r.Context(), userUID, templateID)
	if err != nil {
		log.Error("failed to get share url", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not get share url"))
		return
	}

	log.Info("share url issued", slog.String("template_id", templateID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
