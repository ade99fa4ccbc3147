// Package webhook реализует HTTP-обработчик вебхуков платёжного провайдера.
// Полезная нагрузка проверяется по подписи и нормализуется в событие
// биллинга; ядро никогда не ходит к провайдеру само.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/template-marketplace/internal/http/response"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/services/billing"
)

const maxBodyBytes = 1 << 16

// Handler обрабатывает вебхуки платёжного провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
	secret  string
}

// Service описывает интерфейс бизнес-логики обработки платёжных событий.
type Service interface {
	HandleEvent(ctx context.Context, event billing.Event) error
}

// New создает новый Handler с переданным логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{log: log, service: service, secret: secret}
}

// stripeEvent — конверт события в формате провайдера.
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			Customer          string `json:"customer"`
			Subscription      string `json:"subscription"`
			Status            string `json:"status"`
			CurrentPeriodEnd  int64  `json:"current_period_end"`
			CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
			HostedInvoiceURL  string `json:"hosted_invoice_url"`
			Metadata          struct {
				UserUID  string `json:"user_uid"`
				PlanName string `json:"plan_name"`
			} `json:"metadata"`
			LastPaymentError struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		} `json:"object"`
	} `json:"data"`
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает события подписок и платежей, проверяя подпись запроса.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Невалидная подпись или тело"
// @Router /webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if !h.verifySignature(r.Header.Get("Stripe-Signature"), body) {
		log.Warn("webhook signature verification failed")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var raw stripeEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}

	event := normalize(raw)
	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		log.Error("failed to handle webhook event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not handle event"))
		return
	}

	log.Info("webhook event handled", slog.String("type", event.Type))
	render.JSON(w, r, response.OK())
}

// verifySignature проверяет заголовок вида "t=<ts>,v1=<hex>":
// подпись считается как HMAC-SHA256 от "<ts>.<body>".
func (h *Handler) verifySignature(header string, body []byte) bool {
	if h.secret == "" {
		// Секрет не задан в dev-окружении, пропускаем проверку
		return true
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			sig = value
		}
	}
	if ts == "" || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

// normalize переводит конверт провайдера в событие биллинга. Для событий
// инвойсов внешний идентификатор подписки лежит в поле subscription,
// для событий подписок — в id объекта.
func normalize(raw stripeEvent) billing.Event {
	obj := raw.Data.Object

	event := billing.Event{
		Type:                 raw.Type,
		UserUID:              obj.Metadata.UserUID,
		StripeCustomerID:     obj.Customer,
		StripeSubscriptionID: obj.ID,
		PlanName:             obj.Metadata.PlanName,
		Status:               obj.Status,
		CancelAtPeriodEnd:    obj.CancelAtPeriodEnd,
		InvoiceURL:           obj.HostedInvoiceURL,
		FailureReason:        obj.LastPaymentError.Message,
	}
	if obj.Subscription != "" {
		event.StripeSubscriptionID = obj.Subscription
	}
	if obj.CurrentPeriodEnd > 0 {
		t := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		event.CurrentPeriodEnd = &t
	}
	return event
}
