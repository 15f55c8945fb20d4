// Package apperr определяет общую таксономию ошибок сервисного слоя.
//
// Сервисы возвращают обёрнутые сентинел-ошибки, а HTTP-обработчики
// переводят их в статус-коды через ToStatus. Ошибки никогда не
// "пролетают" за границу сервиса в необработанном виде.
package apperr

import (
	"errors"
	"net/http"
)

// Сентинел-ошибки сервисного слоя.
var (
	// ErrNotFound — запрошенная сущность не существует.
	ErrNotFound = errors.New("not found")
	// ErrForbidden — актор не имеет права на операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState — переход запрошен из неподходящего статуса.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation — отсутствует или некорректно обязательное поле.
	ErrValidation = errors.New("validation failed")
	// ErrActiveContractExists — у клиента уже есть открытый контракт.
	ErrActiveContractExists = errors.New("active contract already exists")
)

// ToStatus переводит ошибку сервисного слоя в HTTP статус-код.
// Неизвестные ошибки считаются инфраструктурными (500).
func ToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrActiveContractExists):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
