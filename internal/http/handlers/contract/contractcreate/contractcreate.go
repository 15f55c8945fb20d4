// Package contractcreate реализует HTTP-обработчик создания заявки
// клиента на подключение тарифного плана.
//
// У клиента может быть только один открытый контракт; повторная заявка
// при открытом контракте отклоняется со статусом 409.
package contractcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики создания заявки.
type Service interface {
	Request(ctx context.Context, customerUID string, req models.DummyContractRequest) (*models.Contract, error)
}

// Handler управляет HTTP-запросами создания заявок на контракт.
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
// @Summary Создать заявку на контракт
// @Description Создает заявку клиента на подключение тарифа. У клиента может быть только один открытый контракт.
// @Tags Contracts
// @Accept  json
// @Produce  json
// @Param request body models.DummyContractRequest true "Данные заявки"
// @Success 200 {object} map[string]any "Созданная заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Открытый контракт уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contract.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded")

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	customerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || customerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	contract, err := h.service.Request(r.Context(), customerUID, req)
	if err != nil {
		log.Error("failed to create contract request", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		if errors.Is(err, apperr.ErrActiveContractExists) {
			render.JSON(w, r, response.Error("active contract already exists"))
			return
		}
		render.JSON(w, r, response.Error("failed to create contract request"))
		return
	}

	log.Info("contract requested", sl.ContractID(contract.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"contract": contract,
	}))
}
