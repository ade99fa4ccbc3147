// Package templatemarketplace предоставляет маршруты для основного приложения.
package templatemarketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	accessstatus "github.com/magabrotheeeer/template-marketplace/internal/http/handlers/access/status"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/access/submit"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/admin/approve"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/admin/createcontent"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/admin/createtemplate"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/admin/listrequests"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/admin/reject"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/canva/callback"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/canva/connect"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/canva/designs"
	canvastatus "github.com/magabrotheeeer/template-marketplace/internal/http/handlers/canva/status"
	contentlist "github.com/magabrotheeeer/template-marketplace/internal/http/handlers/content/list"
	contentread "github.com/magabrotheeeer/template-marketplace/internal/http/handlers/content/read"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/bookmark"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/history"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/list"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/read"
	"github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/share"
	templatestatus "github.com/magabrotheeeer/template-marketplace/internal/http/handlers/template/status"
	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/template-marketplace/internal/services/access"
	authservice "github.com/magabrotheeeer/template-marketplace/internal/services/auth"
	billingservice "github.com/magabrotheeeer/template-marketplace/internal/services/billing"
	canvaservice "github.com/magabrotheeeer/template-marketplace/internal/services/canvaconnect"
	catalogservice "github.com/magabrotheeeer/template-marketplace/internal/services/catalog"
	templateservice "github.com/magabrotheeeer/template-marketplace/internal/services/template"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.Service, templateService *templateservice.Service,
	catalogService *catalogservice.Service, accessService *accessservice.Service,
	canvaService *canvaservice.Service, billingService *billingservice.Service,
	webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Callback OAuth приходит браузерным редиректом без JWT
		r.Get("/canva/callback", callback.New(logger, canvaService).ServeHTTP)

		// Webhook endpoint (без аутентификации, проверка по подписи)
		r.Post("/webhook", webhook.New(logger, billingService, webhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/templates", list.New(logger, templateService).ServeHTTP)
			r.Get("/templates/{id}", read.New(logger, templateService).ServeHTTP)
			r.Post("/templates/{id}/bookmark", bookmark.NewAdd(logger, templateService).ServeHTTP)
			r.Delete("/templates/{id}/bookmark", bookmark.NewRemove(logger, templateService).ServeHTTP)
			r.Get("/bookmarks", bookmark.NewList(logger, templateService).ServeHTTP)
			r.Get("/history", history.New(logger, templateService).ServeHTTP)
			r.Get("/me/access", templatestatus.New(logger, templateService).ServeHTTP)

			r.Get("/content", contentlist.New(logger, catalogService).ServeHTTP)
			r.Get("/content/{id}", contentread.New(logger, catalogService).ServeHTTP)
			r.Post("/content/{id}/usage", contentread.NewUsage(logger, catalogService).ServeHTTP)
			r.Post("/content/{id}/download", contentread.NewDownload(logger, catalogService).ServeHTTP)

			r.Post("/access/request", submit.New(logger, accessService).ServeHTTP)
			r.Get("/access/status", accessstatus.New(logger, accessService).ServeHTTP)

			r.Get("/canva/status", canvastatus.New(logger, canvaService).ServeHTTP)

			// Операции, требующие командного доступа и живого Canva-токена
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.TeamAccessMiddleware(logger, db))
				r.Post("/canva/connect", connect.New(logger, canvaService).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.CanvaGateMiddleware(logger, canvaService))
					r.Get("/canva/designs", designs.New(logger, canvaService).ServeHTTP)
					r.Get("/templates/{id}/share", share.New(logger, templateService).ServeHTTP)
				})
			})

			// Административная панель
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/templates", createtemplate.New(logger, catalogService).ServeHTTP)
				r.Post("/admin/templates/{id}/publish", createtemplate.NewPublish(logger, catalogService).ServeHTTP)
				r.Post("/admin/content", createcontent.New(logger, catalogService).ServeHTTP)
				r.Put("/admin/content/{id}", createcontent.NewUpdate(logger, catalogService).ServeHTTP)
				r.Get("/admin/access/requests", listrequests.New(logger, accessService).ServeHTTP)
				r.Get("/admin/access/stats", listrequests.NewStats(logger, accessService).ServeHTTP)
				r.Post("/admin/access/requests/{id}/approve", approve.New(logger, accessService).ServeHTTP)
				r.Post("/admin/access/requests/{id}/reject", reject.New(logger, accessService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
