package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/services/billing"
)

// MockService реализует интерфейс webhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) HandleEvent(ctx context.Context, event billing.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func signBody(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	const secret = "whsec_test"

	checkoutBody := `{
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"customer": "cus_1",
			"subscription": "sub_1",
			"metadata": {"user_uid": "user-1", "plan_name": "Pro"}
		}}
	}`

	tests := []struct {
		name           string
		body           string
		signature      func(body []byte) string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "валидная подпись, событие оформления",
			body: checkoutBody,
			signature: func(body []byte) string {
				return signBody(secret, "1700000000", body)
			},
			setupMock: func(m *MockService) {
				m.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e billing.Event) bool {
					return e.Type == billing.EventCheckoutCompleted &&
						e.UserUID == "user-1" &&
						e.StripeSubscriptionID == "sub_1" &&
						e.PlanName == "Pro"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name: "невалидная подпись",
			body: checkoutBody,
			signature: func(_ []byte) string {
				return "t=1700000000,v1=deadbeef"
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid signature"}`,
		},
		{
			name: "отсутствует заголовок подписи",
			body: checkoutBody,
			signature: func(_ []byte) string {
				return ""
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid signature"}`,
		},
		{
			name: "неизвестный тип события подтверждается",
			body: `{"type": "customer.created", "data": {"object": {"id": "cus_2"}}}`,
			signature: func(body []byte) string {
				return signBody(secret, "1700000001", body)
			},
			setupMock: func(m *MockService) {
				m.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e billing.Event) bool {
					return e.Type == "customer.created"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, secret)

			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			if sig := tt.signature([]byte(tt.body)); sig != "" {
				req.Header.Set("Stripe-Signature", sig)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
