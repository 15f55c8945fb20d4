// Package contractcancel реализует HTTP-обработчик отмены заявки клиентом.
//
// Отменить можно только собственную заявку и только пока она не решена
// консультантом.
package contractcancel

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

// Service описывает интерфейс бизнес-логики отмены заявки.
type Service interface {
	Cancel(ctx context.Context, contractID, customerUID string) (*models.Contract, error)
}

// Handler управляет HTTP-запросами отмены заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить заявку
// @Description Отменяет нерешённую заявку текущего клиента.
// @Tags Contracts
// @Produce  json
// @Param id path string true "ID контракта"
// @Success 200 {object} map[string]any "Отменённый контракт"
// @Failure 403 {object} response.ErrorResponse "Заявка принадлежит другому клиенту"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Failure 409 {object} response.ErrorResponse "Заявка уже решена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.cancel"

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

	id := chi.URLParam(r, "id")

	contract, err := h.service.Cancel(r.Context(), id, customerUID)
	if err != nil {
		log.Error("failed to cancel contract", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to cancel contract"))
		return
	}

	log.Info("contract cancelled", sl.ContractID(id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"contract": contract,
	}))
}
