package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateMessage(ctx context.Context, msg models.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}
func (m *RepoMock) ListRecentMessages(ctx context.Context, contractID string, limit int) ([]*models.Message, error) {
	args := m.Called(ctx, contractID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}
func (m *RepoMock) DeleteMessage(ctx context.Context, id, authorUID string) (int64, error) {
	args := m.Called(ctx, id, authorUID)
	return args.Get(0).(int64), args.Error(1)
}

type ContractReaderMock struct{ mock.Mock }

func (m *ContractReaderMock) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

type BroadcasterMock struct{ mock.Mock }

func (m *BroadcasterMock) BroadcastMessage(contractID string, msg *models.Message) {
	m.Called(contractID, msg)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const (
	testContractID = "2f6bb0f6-23cd-4fbe-8c1f-6f07d8f0a001"
	testMessageID  = "9d1f5a90-53ab-4c4d-8e7d-0a8b1c2d3e4f"
	testCustomer   = "customer-uid"
)

func approvedContract(expiresIn time.Duration) *models.Contract {
	expiresAt := time.Now().UTC().Add(expiresIn)
	return &models.Contract{
		ID:          testContractID,
		CustomerUID: testCustomer,
		Status:      models.StatusApproved,
		ExpiresAt:   &expiresAt,
	}
}

func TestChatService_History(t *testing.T) {
	t.Run("messages returned oldest first", func(t *testing.T) {
		repo := new(RepoMock)
		contracts := new(ContractReaderMock)

		contracts.On("GetContract", mock.Anything, testContractID).
			Return(approvedContract(time.Hour), nil).Once()
		// репозиторий отдаёт новые первыми
		repo.On("ListRecentMessages", mock.Anything, testContractID, DefaultHistoryLimit).
			Return([]*models.Message{
				{ID: "3", Content: "third"},
				{ID: "2", Content: "second"},
				{ID: "1", Content: "first"},
			}, nil).Once()

		svc := NewChatService(repo, contracts, nil, newNoopLogger())
		messages, err := svc.History(context.Background(), testContractID, testCustomer, models.RoleCustomer, 0)

		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "third", messages[2].Content)
	})

	t.Run("foreign contract yields forbidden", func(t *testing.T) {
		contracts := new(ContractReaderMock)
		contracts.On("GetContract", mock.Anything, testContractID).
			Return(&models.Contract{ID: testContractID, CustomerUID: "other"}, nil).Once()

		svc := NewChatService(new(RepoMock), contracts, nil, newNoopLogger())
		_, err := svc.History(context.Background(), testContractID, testCustomer, models.RoleCustomer, 0)

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("custom limit passed through", func(t *testing.T) {
		repo := new(RepoMock)
		contracts := new(ContractReaderMock)

		contracts.On("GetContract", mock.Anything, testContractID).
			Return(approvedContract(time.Hour), nil).Once()
		repo.On("ListRecentMessages", mock.Anything, testContractID, 10).
			Return([]*models.Message{}, nil).Once()

		svc := NewChatService(repo, contracts, nil, newNoopLogger())
		_, err := svc.History(context.Background(), testContractID, testCustomer, models.RoleCustomer, 10)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestChatService_Send(t *testing.T) {
	req := models.DummyMessage{Content: "hello"}

	t.Run("success send broadcasts enriched message", func(t *testing.T) {
		repo := new(RepoMock)
		contracts := new(ContractReaderMock)
		hub := new(BroadcasterMock)

		enriched := &models.Message{
			ID:         testMessageID,
			Content:    "hello",
			AuthorUID:  testCustomer,
			ContractID: testContractID,
			AuthorName: "customer",
			AuthorRole: models.RoleCustomer,
		}

		contracts.On("GetContract", mock.Anything, testContractID).
			Return(approvedContract(time.Hour), nil).Once()
		repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
			return m.Content == "hello" && m.AuthorUID == testCustomer && m.ContractID == testContractID
		})).Return(testMessageID, nil).Once()
		repo.On("GetMessage", mock.Anything, testMessageID).Return(enriched, nil).Once()
		hub.On("BroadcastMessage", testContractID, enriched).Once()

		svc := NewChatService(repo, contracts, hub, newNoopLogger())
		msg, err := svc.Send(context.Background(), testContractID, testCustomer, "customer", models.RoleCustomer, req)

		require.NoError(t, err)
		assert.Equal(t, "customer", msg.AuthorName)
		hub.AssertExpectations(t)
	})

	t.Run("enrichment failure falls back to known sender data", func(t *testing.T) {
		repo := new(RepoMock)
		contracts := new(ContractReaderMock)
		hub := new(BroadcasterMock)

		contracts.On("GetContract", mock.Anything, testContractID).
			Return(approvedContract(time.Hour), nil).Once()
		repo.On("CreateMessage", mock.Anything, mock.Anything).Return(testMessageID, nil).Once()
		repo.On("GetMessage", mock.Anything, testMessageID).Return(nil, errors.New("db hiccup")).Once()
		hub.On("BroadcastMessage", testContractID, mock.MatchedBy(func(m *models.Message) bool {
			return m.ID == testMessageID && m.AuthorName == "customer" && m.Content == "hello"
		})).Once()

		svc := NewChatService(repo, contracts, hub, newNoopLogger())
		msg, err := svc.Send(context.Background(), testContractID, testCustomer, "customer", models.RoleCustomer, req)

		require.NoError(t, err)
		assert.Equal(t, testMessageID, msg.ID)
		assert.Equal(t, "customer", msg.AuthorName)
	})

	t.Run("pending contract closes the chat", func(t *testing.T) {
		contracts := new(ContractReaderMock)
		contracts.On("GetContract", mock.Anything, testContractID).
			Return(&models.Contract{ID: testContractID, CustomerUID: testCustomer, Status: models.StatusPending}, nil).Once()

		svc := NewChatService(new(RepoMock), contracts, nil, newNoopLogger())
		_, err := svc.Send(context.Background(), testContractID, testCustomer, "customer", models.RoleCustomer, req)

		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	})

	t.Run("expired contract closes the chat", func(t *testing.T) {
		contracts := new(ContractReaderMock)
		contracts.On("GetContract", mock.Anything, testContractID).
			Return(approvedContract(-time.Minute), nil).Once()

		svc := NewChatService(new(RepoMock), contracts, nil, newNoopLogger())
		_, err := svc.Send(context.Background(), testContractID, testCustomer, "customer", models.RoleCustomer, req)

		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	})
}

func TestChatService_Delete(t *testing.T) {
	t.Run("success delete own message", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteMessage", mock.Anything, testMessageID, testCustomer).Return(int64(1), nil).Once()

		svc := NewChatService(repo, new(ContractReaderMock), nil, newNoopLogger())
		err := svc.Delete(context.Background(), testMessageID, testCustomer)

		assert.NoError(t, err)
	})

	t.Run("foreign message yields forbidden", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteMessage", mock.Anything, testMessageID, testCustomer).Return(int64(0), nil).Once()
		repo.On("GetMessage", mock.Anything, testMessageID).
			Return(&models.Message{ID: testMessageID, AuthorUID: "other"}, nil).Once()

		svc := NewChatService(repo, new(ContractReaderMock), nil, newNoopLogger())
		err := svc.Delete(context.Background(), testMessageID, testCustomer)

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing message yields not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteMessage", mock.Anything, testMessageID, testCustomer).Return(int64(0), nil).Once()
		repo.On("GetMessage", mock.Anything, testMessageID).Return(nil, apperr.ErrNotFound).Once()

		svc := NewChatService(repo, new(ContractReaderMock), nil, newNoopLogger())
		err := svc.Delete(context.Background(), testMessageID, testCustomer)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
