package models

import "time"

// Статусы контракта. Переходы: pending -> approved | rejected | cancelled,
// approved -> expired. Все статусы кроме pending и approved терминальны.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Contract представляет заявку клиента на подключение тарифного плана,
// проходящую жизненный цикл от создания до истечения или отмены.
// Поле DecidedAt заполняется и при одобрении, и при отказе.
type Contract struct {
	ID              string     // Уникальный идентификатор контракта
	CustomerUID     string     // Идентификатор клиента-владельца
	PlanID          string     // Идентификатор тарифного плана
	AdvisorUID      *string    // Идентификатор назначенного консультанта (nil до решения)
	Status          string     // Текущий статус контракта
	RequestedAt     time.Time  // Время создания заявки
	DecidedAt       *time.Time // Время решения консультанта (nil пока pending)
	ExpiresAt       *time.Time // Время истечения активного плана (nil до одобрения)
	DurationMinutes *int       // Длительность активного окна в минутах
	CustomerNotes   string     // Заметки клиента к заявке (опционально)
	AdvisorNotes    string     // Заметки консультанта к решению (опционально)

	// Денормализованные поля, заполняемые через join при чтении.
	PlanName        string  // Название плана
	PlanPrice       float64 // Цена плана
	CustomerName    string  // Имя клиента
	CustomerEmail   string  // Почта клиента
	AdvisorName     string  // Имя консультанта (пустое до решения)
}

// Open сообщает, занимает ли контракт "активный слот" клиента:
// pending либо approved с ещё не наступившим сроком истечения.
func (c *Contract) Open(now time.Time) bool {
	switch c.Status {
	case StatusPending:
		return true
	case StatusApproved:
		return c.ExpiresAt == nil || c.ExpiresAt.After(now)
	default:
		return false
	}
}

// DummyContractRequest используется для приёма заявки на контракт из JSON-запроса.
type DummyContractRequest struct {
	PlanID        string `json:"plan_id" validate:"required,uuid"`
	CustomerNotes string `json:"customer_notes,omitempty" validate:"omitempty,max=500"`
}

// DummyDecision используется для приёма решения консультанта
// (одобрение или отказ) из JSON-запроса. Для отказа заметки обязательны,
// это проверяется на уровне сервиса.
type DummyDecision struct {
	AdvisorNotes string `json:"advisor_notes,omitempty" validate:"omitempty,max=500"`
}

// ContractStats содержит агрегированную статистику по контрактам консультанта.
type ContractStats struct {
	Total     int `json:"total"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
	Expired   int `json:"expired"`
}

// ContractNotification — полезная нагрузка уведомления о смене статуса
// контракта, публикуемая в RabbitMQ для сервиса рассылки.
type ContractNotification struct {
	ContractID    string    `json:"contract_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	PlanName      string    `json:"plan_name"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}
