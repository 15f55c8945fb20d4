// Package contractpending реализует HTTP-обработчик очереди заявок,
// ожидающих решения консультанта.
package contractpending

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

// Service описывает интерфейс бизнес-логики очереди заявок.
type Service interface {
	ListPending(ctx context.Context) ([]*models.Contract, error)
}

// Handler управляет HTTP-запросами очереди заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Очередь заявок
// @Description Возвращает заявки, ожидающие решения, старые первыми.
// @Tags Contracts
// @Produce  json
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 403 {object} response.ErrorResponse "Требуется роль консультанта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/pending [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.pending"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	contracts, err := h.service.ListPending(r.Context())
	if err != nil {
		log.Error("failed to list pending contracts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list pending contracts"))
		return
	}

	log.Info("listed pending contracts", slog.Int("count", len(contracts)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":     len(contracts),
		"contracts": contracts,
	}))
}
