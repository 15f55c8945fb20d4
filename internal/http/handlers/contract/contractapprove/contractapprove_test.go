package contractapprove

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

// MockService реализует интерфейс contractapprove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Approve(ctx context.Context, contractID, advisorUID string, req models.DummyDecision) (*models.Contract, error) {
	args := m.Called(ctx, contractID, advisorUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Contract), args.Error(1)
	}
	return nil, args.Error(1)
}

func approvedContract(id, advisorUID string) *models.Contract {
	now := time.Now()
	expires := now.Add(10 * time.Minute)
	minutes := 10
	return &models.Contract{
		ID:              id,
		CustomerUID:     "uid-customer-1",
		AdvisorUID:      &advisorUID,
		Status:          models.StatusApproved,
		DecidedAt:       &now,
		ExpiresAt:       &expires,
		DurationMinutes: &minutes,
	}
}

func TestApproveContractHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		contractID     string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "успешное одобрение с заметками",
			contractID: "contract-1",
			body:       `{"advisor_notes":"подключено по акции"}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "contract-1", "uid-advisor-1",
					models.DummyDecision{AdvisorNotes: "подключено по акции"}).
					Return(approvedContract("contract-1", "uid-advisor-1"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Status":"approved"`,
		},
		{
			name:       "успешное одобрение без тела запроса",
			contractID: "contract-1",
			body:       "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "contract-1", "uid-advisor-1", models.DummyDecision{}).
					Return(approvedContract("contract-1", "uid-advisor-1"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Status":"approved"`,
		},
		{
			name:       "заявка уже решена",
			contractID: "contract-2",
			body:       "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "contract-2", "uid-advisor-1", models.DummyDecision{}).
					Return(nil, apperr.ErrInvalidState)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"failed to approve contract"`,
		},
		{
			name:       "контракт не найден",
			contractID: "missing",
			body:       "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, "missing", "uid-advisor-1", models.DummyDecision{}).
					Return(nil, apperr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"failed to approve contract"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/contracts/"+tt.contractID+"/approve", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-advisor-1")

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.contractID)
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
