package submit

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/template-marketplace/internal/errs"
	"github.com/magabrotheeeer/template-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/template-marketplace/internal/models"
)

// MockService реализует интерфейс submit.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, userUID, reason, businessType string) (*models.AccessRequest, error) {
	args := m.Called(ctx, userUID, reason, businessType)
	if res := args.Get(0); res != nil {
		return res.(*models.AccessRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSubmitHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная подача заявки",
			body: `{"request_reason": "need team access"}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "user-1", "need team access", "").
					Return(&models.AccessRequest{ID: "req-1", Status: models.RequestStatusPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Status":"PENDING"`,
		},
		{
			name: "заявка уже подана",
			body: `{"request_reason": "again"}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "user-1", "again", "").
					Return(nil, errs.ErrDuplicatePending)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"could not submit access request"}`,
		},
		{
			name: "доступ уже выдан",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "user-1", "", "").
					Return(nil, errs.ErrAlreadyGranted)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"could not submit access request"}`,
		},
		{
			name: "пустое тело допустимо",
			body: "",
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "user-1", "", "").
					Return(&models.AccessRequest{ID: "req-2", Status: models.RequestStatusPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"ID":"req-2"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/access/request", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "user-1"))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
