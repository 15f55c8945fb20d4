package models

import "time"

// MaxMessageLength — максимальная длина текста сообщения чата.
const MaxMessageLength = 2000

// Message представляет сообщение чата между клиентом и консультантом.
// Чат привязан к конкретному контракту. Сообщение неизменяемо после
// создания, возможно только удаление автором.
type Message struct {
	ID         string    // Уникальный идентификатор сообщения
	Content    string    // Текст сообщения
	AuthorUID  string    // Идентификатор автора
	ContractID string    // Идентификатор контракта, к которому привязан чат
	CreatedAt  time.Time // Время создания (серверное, задаёт общий порядок)

	// Денормализованные поля автора, заполняемые через join при чтении.
	AuthorName string // Имя автора
	AuthorRole string // Роль автора: customer или advisor
}

// DummyMessage используется для приёма нового сообщения из JSON-запроса.
type DummyMessage struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// TypingEvent — эфемерное событие "пользователь печатает". Не сохраняется
// в базе, существует только как полезная нагрузка широковещательной
// рассылки внутри канала контракта.
type TypingEvent struct {
	AuthorUID  string `json:"author_uid"`
	AuthorName string `json:"author_name"`
	ContractID string `json:"contract_id"`
	Timestamp  int64  `json:"timestamp"`
}
