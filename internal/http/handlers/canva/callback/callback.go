// Package callback реализует HTTP-обработчик OAuth-callback от Canva.
//
// Handler разбирает code, state и error из query-строки и передает их
// бизнес-логике завершения PKCE-потока. Маршрут не защищён JWT: Canva
// перенаправляет сюда браузер пользователя, идентификатор передается
// в state.
package callback

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// Handler обрабатывает OAuth-callback.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения потока.
type Service interface {
	Callback(ctx context.Context, userUID, code, oauthError string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary OAuth-callback Canva
// @Description Завершает PKCE-поток: обменивает код на токены и сохраняет подключение.
// @Tags Canva
// @Produce  json
// @Param code query string true "Код авторизации"
// @Param state query string true "UID пользователя"
// @Param error query string false "Ошибка провайдера"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Отказ провайдера или неполные параметры"
// @Failure 404 {object} response.ErrorResponse "Верификатор не найден или истек"
// @Router /canva/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.canva.callback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	userUID := query.Get("state")
	code := query.Get("code")
	oauthError := query.Get("error")

	if err := h.service.Callback(r.Context(), userUID, code, oauthError); err != nil {
		log.Error("oauth callback failed", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not complete canva connection"))
		return
	}

	log.Info("canva connected", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"connected": true,
	}))
}
