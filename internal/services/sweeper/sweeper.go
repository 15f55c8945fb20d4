// Package services содержит фоновый процесс, помечающий истёкшие контракты
// и публикующий уведомления об истечении.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
	"github.com/magabrotheeeer/plan-connect/internal/rabbitmq"
)

// Expirer переводит просроченные контракты в статус expired.
type Expirer interface {
	ExpireDue(ctx context.Context) ([]models.ContractNotification, error)
}

// Publisher публикует уведомления в брокер сообщений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// SweeperService периодически помечает истёкшие контракты. Проход
// идемпотентен: уже истёкшие контракты повторно не затрагиваются.
type SweeperService struct {
	expirer   Expirer
	publisher Publisher
	interval  time.Duration
	log       *slog.Logger
}

// NewSweeperService создает новый экземпляр SweeperService.
func NewSweeperService(expirer Expirer, publisher Publisher, interval time.Duration, log *slog.Logger) *SweeperService {
	return &SweeperService{
		expirer:   expirer,
		publisher: publisher,
		interval:  interval,
		log:       log,
	}
}

// Run запускает периодический проход до отмены контекста.
func (s *SweeperService) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SweeperService) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		s.log.Error("failed to expire due contracts", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		return
	}
	s.log.Info("expired contracts", slog.Int("count", len(expired)))

	for _, notification := range expired {
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.Publish(rabbitmq.NotificationExchange, rabbitmq.RoutingKeyExpired, notification); err != nil {
			s.log.Error("failed to publish expiry notification", sl.Err(err))
		}
	}
}
