// Package list реализует HTTP-обработчик выдачи каталога шаблонов.
//
// Handler разбирает параметры фильтрации из query-строки, вызывает
// бизнес-логику выборки и возвращает страницу шаблонов с правами доступа
// пользователя. Размер страницы усекается до лимита тарифа.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
	templateservice "github.com/magabrotheeeer/template-marketplace/internal/services/template"
)

const defaultLimit = 20

// Handler обрабатывает запросы на выдачу каталога шаблонов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики выборки шаблонов.
type Service interface {
	List(ctx context.Context, userUID string, filter models.TemplateListFilter) (*templateservice.ListResult, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог шаблонов
// @Description Возвращает страницу опубликованных шаблонов с фильтрацией и сортировкой.
// @Tags Templates
// @Produce  json
// @Param search query string false "Поиск по заголовку и описанию"
// @Param content_type query string false "Тип контента"
// @Param tags query string false "Теги через запятую"
// @Param sort query string false "newest, popular или trending"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Страница каталога"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /templates [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	filter := models.TemplateListFilter{
		Search:      r.URL.Query().Get("search"),
		ContentType: r.URL.Query().Get("content_type"),
		SortBy:      r.URL.Query().Get("sort"),
		Limit:       defaultLimit,
	}
	if raw := r.URL.Query().Get("tags"); raw != "" {
		filter.Tags = strings.Split(raw, ",")
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	result, err := h.service.List(r.Context(), userUID, filter)
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not list templates"))
		return
	}

	log.Info("templates listed", slog.Int("count", len(result.Templates)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"templates":   result.Templates,
		"total":       result.Total,
		"entitlement": result.Entitlement,
	}))
}
