// Package connect реализует HTTP-обработчик старта OAuth-подключения Canva.
//
// Handler вызывает бизнес-логику, которая генерирует PKCE-верификатор и
// строит URL авторизации. Подключение доступно только пользователям
// с выданным командным доступом.
package connect

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
)

// Handler обрабатывает запросы на старт OAuth-подключения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подключения.
type Service interface {
	Initiate(ctx context.Context, userUID string) (string, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подключение аккаунта Canva
// @Description Начинает PKCE-поток и возвращает URL авторизации Canva.
// @Tags Canva
// @Produce  json
// @Success 200 {object} map[string]any "URL авторизации"
// @Failure 403 {object} response.ErrorResponse "Нет командного доступа"
// @Router /canva/connect [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.canva.connect"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	url, err := h.service.Initiate(r.Context(), userUID)
	if err != nil {
		log.Error("failed to initiate oauth flow", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not initiate canva connection"))
		return
	}

	log.Info("oauth flow initiated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"authorization_url": url,
	}))
}
