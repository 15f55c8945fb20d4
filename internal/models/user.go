// Package models содержит доменные структуры приложения: пользователей,
// тарифные планы, контракты и сообщения чата, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей системы.
const (
	// RoleCustomer — зарегистрированный клиент, может просматривать планы
	// и запрашивать контракты.
	RoleCustomer = "customer"
	// RoleAdvisor — коммерческий консультант, управляет каталогом планов
	// и рассматривает заявки на контракты.
	RoleAdvisor = "advisor"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, customer или advisor
	Active       bool      // Признак активности учётной записи
	CreatedAt    time.Time // Дата регистрации
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=customer advisor"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
