// Package services содержит бизнес-логику жизненного цикла контрактов:
// заявка, решение консультанта, отмена и истечение срока действия.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/metrics"
	"github.com/magabrotheeeer/plan-connect/internal/models"
	"github.com/magabrotheeeer/plan-connect/internal/rabbitmq"
)

// ContractRepository определяет методы для работы с контрактами в хранилище.
type ContractRepository interface {
	// CountOpenContracts возвращает число открытых контрактов клиента.
	CountOpenContracts(ctx context.Context, customerUID string, now time.Time) (int, error)
	// CreateContract сохраняет новую заявку и возвращает её с обогащёнными полями.
	CreateContract(ctx context.Context, contract models.Contract) (*models.Contract, error)
	// GetContract возвращает контракт по ID.
	GetContract(ctx context.Context, id string) (*models.Contract, error)
	// ListContractsByCustomer возвращает контракты клиента.
	ListContractsByCustomer(ctx context.Context, customerUID string) ([]*models.Contract, error)
	// ListPendingContracts возвращает все заявки, ожидающие решения.
	ListPendingContracts(ctx context.Context) ([]*models.Contract, error)
	// ListContractsByAdvisor возвращает контракты, решённые консультантом.
	ListContractsByAdvisor(ctx context.Context, advisorUID string) ([]*models.Contract, error)
	// ApproveContract атомарно одобряет заявку; 0 строк — заявка не pending.
	ApproveContract(ctx context.Context, id, advisorUID string,
		decidedAt, expiresAt time.Time, durationMinutes int, notes string) (int64, error)
	// RejectContract атомарно отклоняет заявку.
	RejectContract(ctx context.Context, id, advisorUID string, decidedAt time.Time, notes string) (int64, error)
	// CancelContract атомарно отменяет заявку владельца.
	CancelContract(ctx context.Context, id, customerUID string) (int64, error)
	// ExpireDueContracts помечает просроченные контракты истёкшими.
	ExpireDueContracts(ctx context.Context, now time.Time) ([]models.ContractNotification, error)
	// ExpireDueContractsForCustomer помечает просроченные контракты одного клиента.
	ExpireDueContractsForCustomer(ctx context.Context, customerUID string, now time.Time) (int64, error)
	// ContractStatsByAdvisor возвращает сводку по решениям консультанта.
	ContractStatsByAdvisor(ctx context.Context, advisorUID string) (*models.ContractStats, error)
}

// PlanReader отдаёт тарифы каталога для проверки заявок.
type PlanReader interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// Publisher публикует доменные события в брокер сообщений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// ContractService реализует переходы статусов контракта. Все переходы
// выполняются условными обновлениями, поэтому конкурирующие решения по
// одной заявке не затирают друг друга.
type ContractService struct {
	repo      ContractRepository
	plans     PlanReader
	publisher Publisher
	duration  time.Duration
	log       *slog.Logger
}

// NewContractService создает новый экземпляр ContractService.
// duration — срок действия одобренного контракта.
func NewContractService(repo ContractRepository, plans PlanReader, publisher Publisher,
	duration time.Duration, log *slog.Logger) *ContractService {
	return &ContractService{
		repo:      repo,
		plans:     plans,
		publisher: publisher,
		duration:  duration,
		log:       log,
	}
}

// Request создает заявку клиента на подключение тарифа. У клиента может
// быть только один открытый контракт: перед проверкой помечаются
// просроченные, чтобы недавно истёкший контракт не блокировал новую заявку.
func (s *ContractService) Request(ctx context.Context, customerUID string, req models.DummyContractRequest) (*models.Contract, error) {
	now := time.Now().UTC()

	if _, err := s.repo.ExpireDueContractsForCustomer(ctx, customerUID, now); err != nil {
		return nil, err
	}

	open, err := s.repo.CountOpenContracts(ctx, customerUID, now)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, apperr.ErrActiveContractExists
	}

	plan, err := s.plans.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, fmt.Errorf("%w: plan is no longer available", apperr.ErrInvalidState)
	}

	contract, err := s.repo.CreateContract(ctx, models.Contract{
		PlanID:        req.PlanID,
		CustomerUID:   customerUID,
		Status:        models.StatusPending,
		CustomerNotes: req.CustomerNotes,
		RequestedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("created contract request",
		sl.ContractID(contract.ID), sl.UID(customerUID))
	metrics.ContractTransitions.WithLabelValues(models.StatusPending).Inc()

	return contract, nil
}

// Approve одобряет заявку от имени консультанта и назначает срок действия.
// Повторное одобрение или одобрение решённой заявки отклоняется.
func (s *ContractService) Approve(ctx context.Context, contractID, advisorUID string, req models.DummyDecision) (*models.Contract, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.duration)
	durationMinutes := int(s.duration.Minutes())

	rows, err := s.repo.ApproveContract(ctx, contractID, advisorUID, now, expiresAt, durationMinutes, req.AdvisorNotes)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.classifyMiss(ctx, contractID)
	}

	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	s.log.Info("approved contract",
		sl.ContractID(contractID), sl.UID(advisorUID),
		slog.Time("expires_at", expiresAt))
	metrics.ContractTransitions.WithLabelValues(models.StatusApproved).Inc()

	notification := models.ContractNotification{
		ContractID:    contract.ID,
		CustomerEmail: contract.CustomerEmail,
		CustomerName:  contract.CustomerName,
		PlanName:      contract.PlanName,
		Status:        models.StatusApproved,
	}
	if contract.ExpiresAt != nil {
		notification.ExpiresAt = *contract.ExpiresAt
	}
	s.publish(notification, rabbitmq.RoutingKeyApproved)

	return contract, nil
}

// Reject отклоняет заявку. Причина отклонения обязательна.
func (s *ContractService) Reject(ctx context.Context, contractID, advisorUID string, req models.DummyDecision) (*models.Contract, error) {
	if strings.TrimSpace(req.AdvisorNotes) == "" {
		return nil, fmt.Errorf("%w: rejection requires advisor notes", apperr.ErrValidation)
	}

	rows, err := s.repo.RejectContract(ctx, contractID, advisorUID, time.Now().UTC(), req.AdvisorNotes)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.classifyMiss(ctx, contractID)
	}

	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	s.log.Info("rejected contract", sl.ContractID(contractID), sl.UID(advisorUID))
	metrics.ContractTransitions.WithLabelValues(models.StatusRejected).Inc()

	return contract, nil
}

// Cancel отменяет заявку. Отменить можно только собственную заявку и
// только пока она не решена.
func (s *ContractService) Cancel(ctx context.Context, contractID, customerUID string) (*models.Contract, error) {
	rows, err := s.repo.CancelContract(ctx, contractID, customerUID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		contract, err := s.repo.GetContract(ctx, contractID)
		if err != nil {
			return nil, err
		}
		if contract.CustomerUID != customerUID {
			return nil, apperr.ErrForbidden
		}
		return nil, fmt.Errorf("%w: contract is %s", apperr.ErrInvalidState, contract.Status)
	}

	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	s.log.Info("cancelled contract", sl.ContractID(contractID), sl.UID(customerUID))
	metrics.ContractTransitions.WithLabelValues(models.StatusCancelled).Inc()

	return contract, nil
}

// ExpireDue помечает истёкшими все просроченные одобренные контракты и
// возвращает данные для уведомлений. Повторный вызов ничего не меняет.
func (s *ContractService) ExpireDue(ctx context.Context) ([]models.ContractNotification, error) {
	expired, err := s.repo.ExpireDueContracts(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		metrics.ContractsExpired.Add(float64(len(expired)))
	}
	return expired, nil
}

// Get возвращает контракт. Клиент видит только собственные контракты,
// консультант — любые.
func (s *ContractService) Get(ctx context.Context, contractID, userUID, role string) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdvisor && contract.CustomerUID != userUID {
		return nil, apperr.ErrForbidden
	}
	return contract, nil
}

// ListForCustomer возвращает контракты клиента. Перед чтением помечаются
// просроченные, чтобы клиент никогда не видел фантомно-активный контракт.
func (s *ContractService) ListForCustomer(ctx context.Context, customerUID string) ([]*models.Contract, error) {
	swept, err := s.repo.ExpireDueContractsForCustomer(ctx, customerUID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if swept > 0 {
		s.log.Debug("expired contracts on read", sl.UID(customerUID), slog.Int64("count", swept))
		metrics.ContractsExpired.Add(float64(swept))
	}
	return s.repo.ListContractsByCustomer(ctx, customerUID)
}

// ListPending возвращает заявки, ожидающие решения консультанта.
func (s *ContractService) ListPending(ctx context.Context) ([]*models.Contract, error) {
	return s.repo.ListPendingContracts(ctx)
}

// ListForAdvisor возвращает контракты, решённые консультантом.
func (s *ContractService) ListForAdvisor(ctx context.Context, advisorUID string) ([]*models.Contract, error) {
	return s.repo.ListContractsByAdvisor(ctx, advisorUID)
}

// StatsForAdvisor возвращает сводку по решениям консультанта.
func (s *ContractService) StatsForAdvisor(ctx context.Context, advisorUID string) (*models.ContractStats, error) {
	return s.repo.ContractStatsByAdvisor(ctx, advisorUID)
}

// classifyMiss различает отсутствующий контракт и контракт не в том
// статусе после неуспешного условного обновления.
func (s *ContractService) classifyMiss(ctx context.Context, contractID string) error {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: contract is %s", apperr.ErrInvalidState, contract.Status)
}

// publish отправляет уведомление в брокер. Ошибка публикации не
// прерывает переход статуса: уведомления негарантированные.
func (s *ContractService) publish(n models.ContractNotification, routingKey string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(rabbitmq.NotificationExchange, routingKey, n); err != nil {
		s.log.Error("failed to publish contract notification", sl.Err(err))
	}
}
