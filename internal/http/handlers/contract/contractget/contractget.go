// Package contractget реализует HTTP-обработчик чтения одного контракта.
package contractget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения контракта.
type Service interface {
	Get(ctx context.Context, contractID, userUID, role string) (*models.Contract, error)
}

// Handler управляет HTTP-запросами чтения контракта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить контракт
// @Description Возвращает контракт. Клиент видит только собственные контракты.
// @Tags Contracts
// @Produce  json
// @Param id path string true "ID контракта"
// @Success 200 {object} map[string]any "Контракт"
// @Failure 403 {object} response.ErrorResponse "Контракт принадлежит другому клиенту"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	id := chi.URLParam(r, "id")

	contract, err := h.service.Get(r.Context(), id, userUID, role)
	if err != nil {
		log.Error("failed to get contract", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to get contract"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"contract": contract,
	}))
}
