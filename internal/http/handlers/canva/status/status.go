// Package status реализует HTTP-обработчик выдачи состояния
// OAuth-подключения пользователя к Canva.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/services/canvaconnect"
)

// Handler обрабатывает запросы на выдачу состояния подключения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики состояния подключения.
type Service interface {
	Status(ctx context.Context, userUID string) (*canvaconnect.ConnectionStatus, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние подключения Canva
// @Tags Canva
// @Produce  json
// @Success 200 {object} canvaconnect.ConnectionStatus
// @Router /canva/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.canva.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get connection status", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not get connection status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(status))
}
