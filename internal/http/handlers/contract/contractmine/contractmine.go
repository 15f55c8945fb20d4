// Package contractmine реализует HTTP-обработчик списка контрактов,
// решённых текущим консультантом.
package contractmine

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

// Service описывает интерфейс бизнес-логики списка решённых контрактов.
type Service interface {
	ListForAdvisor(ctx context.Context, advisorUID string) ([]*models.Contract, error)
}

// Handler управляет HTTP-запросами списка решённых контрактов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Контракты консультанта
// @Description Возвращает контракты, решённые текущим консультантом.
// @Tags Contracts
// @Produce  json
// @Success 200 {object} map[string]any "Список контрактов"
// @Failure 403 {object} response.ErrorResponse "Требуется роль консультанта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/mine [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.mine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	advisorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || advisorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	contracts, err := h.service.ListForAdvisor(r.Context(), advisorUID)
	if err != nil {
		log.Error("failed to list advisor contracts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list contracts"))
		return
	}

	log.Info("listed advisor contracts", slog.Int("count", len(contracts)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":     len(contracts),
		"contracts": contracts,
	}))
}
