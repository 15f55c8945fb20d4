// Package contractstats реализует HTTP-обработчик сводки по решениям
// консультанта.
package contractstats

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

// Service описывает интерфейс бизнес-логики статистики.
type Service interface {
	StatsForAdvisor(ctx context.Context, advisorUID string) (*models.ContractStats, error)
}

// Handler управляет HTTP-запросами статистики консультанта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика консультанта
// @Description Возвращает сводку по контрактам, решённым текущим консультантом.
// @Tags Contracts
// @Produce  json
// @Success 200 {object} map[string]any "Сводка по контрактам"
// @Failure 403 {object} response.ErrorResponse "Требуется роль консультанта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.stats"

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

	stats, err := h.service.StatsForAdvisor(r.Context(), advisorUID)
	if err != nil {
		log.Error("failed to get contract stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get contract stats"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}
