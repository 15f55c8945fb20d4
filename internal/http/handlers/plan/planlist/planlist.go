// Package planlist реализует HTTP-обработчик публичного каталога тарифов.
//
// Handler возвращает активные тарифы, отсортированные по цене. Параметр q
// фильтрует по подстроке названия, segment — по сегменту тарифа.
package planlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListActive(ctx context.Context, nameQuery, segment string) ([]*models.Plan, error)
}

// Handler управляет HTTP-запросами чтения каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список активных тарифов
// @Description Возвращает активные тарифы по возрастанию цены. Поддерживает поиск по названию и фильтр по сегменту.
// @Tags Plans
// @Produce  json
// @Param q query string false "Подстрока названия"
// @Param segment query string false "Сегмент тарифа" Enums(basic, mid, premium)
// @Success 200 {object} map[string]any "Список тарифов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	nameQuery := r.URL.Query().Get("q")
	segment := r.URL.Query().Get("segment")

	plans, err := h.service.ListActive(r.Context(), nameQuery, segment)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list plans"))
		return
	}

	log.Info("listed plans", slog.Int("count", len(plans)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(plans),
		"plans": plans,
	}))
}
