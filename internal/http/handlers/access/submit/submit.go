// Package submit реализует HTTP-обработчик подачи заявки на командный доступ.
package submit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Handler обрабатывает подачу заявки на командный доступ.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подачи заявки.
type Service interface {
	Submit(ctx context.Context, userUID, reason, businessType string) (*models.AccessRequest, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подать заявку на командный доступ
// @Description Создает PENDING-заявку. У пользователя может быть не более одной активной заявки.
// @Tags Access
// @Accept  json
// @Produce  json
// @Param request body models.DummyAccessRequest false "Причина запроса"
// @Success 200 {object} map[string]any "Созданная заявка"
// @Failure 409 {object} response.ErrorResponse "Заявка уже подана или доступ уже выдан"
// @Router /access/request [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	// Тело опционально: заявка без причины допустима
	var req models.DummyAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	created, err := h.service.Submit(r.Context(), userUID, req.RequestReason, req.BusinessType)
	if err != nil {
		log.Error("failed to submit access request", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not submit access request"))
		return
	}

	log.Info("access request submitted", slog.String("request_id_created", created.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": created,
	}))
}
