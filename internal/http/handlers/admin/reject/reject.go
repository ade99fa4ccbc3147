// Package reject реализует административный HTTP-обработчик отклонения
// заявки на командный доступ.
package reject

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// Handler обрабатывает отклонение заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отклонения заявки.
type Service interface {
	Reject(ctx context.Context, requestID, approverUID, notes string) (*models.AccessRequest, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отклонить заявку на командный доступ
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID заявки"
// @Param request body models.DummyReject false "Заметки"
// @Success 200 {object} map[string]any "Отклоненная заявка"
// @Failure 400 {object} response.ErrorResponse "Заявка уже обработана"
// @Router /admin/access/requests/{id}/reject [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reject"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("request id is required"))
		return
	}
	approverUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	var req models.DummyReject
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	rejected, err := h.service.Reject(r.Context(), requestID, approverUID, req.AdminNotes)
	if err != nil {
		log.Error("failed to reject access request", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not reject access request"))
		return
	}

	log.Info("access request rejected", slog.String("access_request_id", requestID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": rejected,
	}))
}
