package rabbitmq

import (
	"github.com/streadway/amqp"

	librabbitmq "github.com/magabrotheeeer/plan-connect/internal/lib/rabbitmq"
)

// ChannelPublisher адаптирует канал AMQP к интерфейсу Publisher сервисов.
type ChannelPublisher struct {
	ch *amqp.Channel
}

// NewChannelPublisher создаёт публикатор поверх открытого канала.
func NewChannelPublisher(ch *amqp.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish публикует сообщение в обменник с указанным ключом маршрутизации.
func (p *ChannelPublisher) Publish(exchange, routingKey string, message any) error {
	return librabbitmq.PublishMessage(p.ch, exchange, routingKey, message)
}
