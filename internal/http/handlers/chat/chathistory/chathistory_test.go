package chathistory

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// MockService реализует интерфейс chathistory.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) History(ctx context.Context, contractID, userUID, role string, limit int) ([]*models.Message, error) {
	args := m.Called(ctx, contractID, userUID, role, limit)
	if res := args.Get(0); res != nil {
		return res.([]*models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestChatHistoryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	messages := []*models.Message{
		{ID: "msg-1", ContractID: "contract-1", AuthorUID: "uid-customer-1", Content: "привет", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: "msg-2", ContractID: "contract-1", AuthorUID: "uid-advisor-1", Content: "здравствуйте", CreatedAt: time.Now()},
	}

	tests := []struct {
		name           string
		url            string
		userUID        string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "история без limit",
			url:     "/contracts/contract-1/chat",
			userUID: "uid-customer-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, "contract-1", "uid-customer-1", models.RoleCustomer, 0).
					Return(messages, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name:    "история с limit",
			url:     "/contracts/contract-1/chat?limit=1",
			userUID: "uid-customer-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, "contract-1", "uid-customer-1", models.RoleCustomer, 1).
					Return(messages[1:], nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name:    "некорректный limit игнорируется",
			url:     "/contracts/contract-1/chat?limit=abc",
			userUID: "uid-customer-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, "contract-1", "uid-customer-1", models.RoleCustomer, 0).
					Return(messages, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name:    "чужой контракт",
			url:     "/contracts/contract-1/chat",
			userUID: "uid-stranger",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, "contract-1", "uid-stranger", models.RoleCustomer, 0).
					Return(nil, apperr.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"failed to get chat history"`,
		},
		{
			name:           "нет uid в контексте",
			url:            "/contracts/contract-1/chat",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			ctx := req.Context()
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			}

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "contract-1")
			ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
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
