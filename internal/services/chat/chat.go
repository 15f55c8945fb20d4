// Package services содержит бизнес-логику чата контракта: история,
// отправка сообщений в комнату и удаление собственных сообщений.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/metrics"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// DefaultHistoryLimit — число сообщений истории по умолчанию.
const DefaultHistoryLimit = 50

// MessageRepository определяет методы для работы с сообщениями в хранилище.
type MessageRepository interface {
	// CreateMessage сохраняет сообщение и возвращает его ID.
	CreateMessage(ctx context.Context, msg models.Message) (string, error)
	// GetMessage возвращает сообщение с данными автора.
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	// ListRecentMessages возвращает последние сообщения контракта,
	// новые первыми.
	ListRecentMessages(ctx context.Context, contractID string, limit int) ([]*models.Message, error)
	// DeleteMessage удаляет сообщение автора; 0 строк — чужое или отсутствует.
	DeleteMessage(ctx context.Context, id, authorUID string) (int64, error)
}

// ContractReader отдаёт контракты для проверки доступа к чату.
type ContractReader interface {
	GetContract(ctx context.Context, id string) (*models.Contract, error)
}

// Broadcaster рассылает новые сообщения подключённым участникам комнаты.
type Broadcaster interface {
	BroadcastMessage(contractID string, msg *models.Message)
}

// ChatService реализует чат, привязанный к контракту. Писать в чат можно
// только по одобренному и не истёкшему контракту; читать историю —
// по любому контракту, к которому у пользователя есть доступ.
type ChatService struct {
	repo      MessageRepository
	contracts ContractReader
	hub       Broadcaster
	log       *slog.Logger
}

// NewChatService создает новый экземпляр ChatService.
func NewChatService(repo MessageRepository, contracts ContractReader, hub Broadcaster, log *slog.Logger) *ChatService {
	return &ChatService{
		repo:      repo,
		contracts: contracts,
		hub:       hub,
		log:       log,
	}
}

// Authorize проверяет, что пользователь — участник контракта: клиент-владелец
// либо консультант. Возвращает контракт для дальнейших проверок.
func (s *ChatService) Authorize(ctx context.Context, contractID, userUID, role string) (*models.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdvisor && contract.CustomerUID != userUID {
		return nil, apperr.ErrForbidden
	}
	return contract, nil
}

// History возвращает последние сообщения контракта в хронологическом
// порядке. Выбираются новейшие limit сообщений, затем порядок
// разворачивается, чтобы старые шли первыми.
func (s *ChatService) History(ctx context.Context, contractID, userUID, role string, limit int) ([]*models.Message, error) {
	if _, err := s.Authorize(ctx, contractID, userUID, role); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	messages, err := s.repo.ListRecentMessages(ctx, contractID, limit)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Send сохраняет сообщение и рассылает его участникам комнаты контракта.
// Чат открыт только по одобренному контракту до момента его истечения.
func (s *ChatService) Send(ctx context.Context, contractID, userUID, username, role string, req models.DummyMessage) (*models.Message, error) {
	contract, err := s.Authorize(ctx, contractID, userUID, role)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: chat requires an approved contract", apperr.ErrInvalidState)
	}
	if contract.ExpiresAt != nil && !contract.ExpiresAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: contract has expired", apperr.ErrInvalidState)
	}

	id, err := s.repo.CreateMessage(ctx, models.Message{
		Content:    req.Content,
		AuthorUID:  userUID,
		ContractID: contractID,
	})
	if err != nil {
		return nil, err
	}

	msg, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		// Сообщение уже сохранено; при сбое обогащения собираем его из
		// того, что знаем об отправителе, чтобы не терять рассылку.
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Warn("failed to reload message after insert", sl.Err(err))
		}
		msg = &models.Message{
			ID:         id,
			Content:    req.Content,
			AuthorUID:  userUID,
			ContractID: contractID,
			CreatedAt:  time.Now().UTC(),
			AuthorName: username,
			AuthorRole: role,
		}
	}

	s.hub.BroadcastMessage(contractID, msg)
	metrics.ChatMessages.Inc()

	return msg, nil
}

// Delete удаляет сообщение. Удалять можно только собственные сообщения.
func (s *ChatService) Delete(ctx context.Context, messageID, userUID string) error {
	rows, err := s.repo.DeleteMessage(ctx, messageID, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.repo.GetMessage(ctx, messageID); err != nil {
			return err
		}
		return apperr.ErrForbidden
	}

	s.log.Info("deleted message", slog.String("message_id", messageID), sl.UID(userUID))
	return nil
}
