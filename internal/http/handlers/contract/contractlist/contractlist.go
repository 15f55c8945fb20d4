// Package contractlist реализует HTTP-обработчик списка контрактов клиента.
//
// Перед выдачей просроченные контракты клиента помечаются истёкшими,
// поэтому ответ никогда не содержит фантомно-активный контракт.
package contractlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики списка контрактов.
type Service interface {
	ListForCustomer(ctx context.Context, customerUID string) ([]*models.Contract, error)
}

// Handler управляет HTTP-запросами списка контрактов клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Контракты клиента
// @Description Возвращает контракты текущего клиента, новые первыми.
// @Tags Contracts
// @Produce  json
// @Success 200 {object} map[string]any "Список контрактов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	customerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || customerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	contracts, err := h.service.ListForCustomer(r.Context(), customerUID)
	if err != nil {
		log.Error("failed to list contracts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list contracts"))
		return
	}

	log.Info("listed contracts", slog.Int("count", len(contracts)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":     len(contracts),
		"contracts": contracts,
	}))
}
