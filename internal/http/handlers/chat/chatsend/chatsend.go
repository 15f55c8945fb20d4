// Package chatsend реализует HTTP-обработчик отправки сообщения в чат
// контракта.
//
// Сообщение сохраняется и рассылается подключённым участникам комнаты.
// Писать в чат можно только по одобренному и не истёкшему контракту.
package chatsend

import (
	"context"
	"encoding/json"
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

// Service описывает интерфейс бизнес-логики отправки сообщения.
type Service interface {
	Send(ctx context.Context, contractID, userUID, username, role string, req models.DummyMessage) (*models.Message, error)
}

// Handler управляет HTTP-запросами отправки сообщений.
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
// @Summary Отправить сообщение
// @Description Сохраняет сообщение чата контракта и рассылает его участникам.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param id path string true "ID контракта"
// @Param request body models.DummyMessage true "Текст сообщения"
// @Success 200 {object} map[string]any "Созданное сообщение"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к контракту"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Failure 409 {object} response.ErrorResponse "Чат закрыт: контракт не одобрен или истёк"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	username, _ := r.Context().Value(middlewarectx.User).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	contractID := chi.URLParam(r, "id")

	msg, err := h.service.Send(r.Context(), contractID, userUID, username, role, req)
	if err != nil {
		log.Error("failed to send message", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to send message"))
		return
	}

	log.Info("message sent", sl.ContractID(contractID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": msg,
	}))
}
