package approve

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// MockService реализует интерфейс approve.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Approve(ctx context.Context, requestID, approverUID, role, notes string) (*models.AccessRequest, error) {
	args := m.Called(ctx, requestID, approverUID, role, notes)
	if res := args.Get(0); res != nil {
		return res.(*models.AccessRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestApproveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestID      string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное одобрение",
			requestID: "req-1",
			body:      `{"team_role": "designer", "admin_notes": "ok"}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "req-1", "admin-1", "designer", "ok").
					Return(&models.AccessRequest{ID: "req-1", Status: models.RequestStatusApproved}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Status":"APPROVED"`,
		},
		{
			name:      "роль по умолчанию member",
			requestID: "req-2",
			body:      `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "req-2", "admin-1", "member", "").
					Return(&models.AccessRequest{ID: "req-2", Status: models.RequestStatusApproved}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"ID":"req-2"`,
		},
		{
			name:      "заявка уже обработана",
			requestID: "req-3",
			body:      `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "req-3", "admin-1", "member", "").
					Return(nil, errs.ErrInvalidState)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"could not approve access request"}`,
		},
		{
			name:      "аккаунт одобряющего не подключен",
			requestID: "req-4",
			body:      `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "req-4", "admin-1", "member", "").
					Return(nil, errs.ErrApproverNotConnected)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"could not approve access request"}`,
		},
		{
			name:      "пользователь уже в команде",
			requestID: "req-5",
			body:      `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "req-5", "admin-1", "member", "").
					Return(nil, errs.ErrAlreadyMember)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"could not approve access request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost,
				"/admin/access/requests/"+tt.requestID+"/approve", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.requestID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "admin-1")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
