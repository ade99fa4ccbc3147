// Package approve реализует административный HTTP-обработчик одобрения
// заявки на командный доступ.
package approve

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

// Handler обрабатывает одобрение заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики одобрения заявки.
type Service interface {
	Approve(ctx context.Context, requestID, approverUID, role, notes string) (*models.AccessRequest, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Одобрить заявку на командный доступ
// @Description Переводит заявку в APPROVED после добавления пользователя в команду Canva.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID заявки"
// @Param request body models.DummyApprove false "Роль и заметки"
// @Success 200 {object} map[string]any "Одобренная заявка"
// @Failure 400 {object} response.ErrorResponse "Заявка уже обработана или аккаунт одобряющего не подключен"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже состоит в команде"
// @Router /admin/access/requests/{id}/approve [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.approve"

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

	var req models.DummyApprove
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.TeamRole == "" {
		req.TeamRole = "member"
	}

	approved, err := h.service.Approve(r.Context(), requestID, approverUID, req.TeamRole, req.AdminNotes)
	if err != nil {
		log.Error("failed to approve access request", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not approve access request"))
		return
	}

	log.Info("access request approved", slog.String("access_request_id", requestID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": approved,
	}))
}
