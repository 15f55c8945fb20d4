// Package contractapprove реализует HTTP-обработчик одобрения заявки
// консультантом.
//
// Одобрение назначает срок действия плана. Повторное решение по уже
// решённой заявке отклоняется со статусом 409.
package contractapprove

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики одобрения заявки.
type Service interface {
	Approve(ctx context.Context, contractID, advisorUID string, req models.DummyDecision) (*models.Contract, error)
}

// Handler управляет HTTP-запросами одобрения заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Одобрить заявку
// @Description Одобряет заявку и назначает срок действия плана. Тело запроса опционально.
// @Tags Contracts
// @Accept  json
// @Produce  json
// @Param id path string true "ID контракта"
// @Param request body models.DummyDecision false "Заметки консультанта"
// @Success 200 {object} map[string]any "Одобренный контракт"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Failure 409 {object} response.ErrorResponse "Заявка уже решена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	advisorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || advisorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")

	contract, err := h.service.Approve(r.Context(), id, advisorUID, req)
	if err != nil {
		log.Error("failed to approve contract", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to approve contract"))
		return
	}

	log.Info("contract approved", sl.ContractID(id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"contract": contract,
	}))
}
