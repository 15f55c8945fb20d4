// Package chathistory реализует HTTP-обработчик истории чата контракта.
//
// Возвращаются последние limit сообщений в хронологическом порядке:
// старые первыми, новые последними.
package chathistory

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Service описывает интерфейс бизнес-логики истории чата.
type Service interface {
	History(ctx context.Context, contractID, userUID, role string, limit int) ([]*models.Message, error)
}

// Handler управляет HTTP-запросами истории чата.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История чата
// @Description Возвращает последние сообщения чата контракта, старые первыми.
// @Tags Chat
// @Produce  json
// @Param id path string true "ID контракта"
// @Param limit query int false "Число сообщений (по умолчанию 50)"
// @Success 200 {object} map[string]any "Список сообщений"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к контракту"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /contracts/{id}/chat [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.history"

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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0
	}

	contractID := chi.URLParam(r, "id")

	messages, err := h.service.History(r.Context(), contractID, userUID, role, limit)
	if err != nil {
		log.Error("failed to get chat history", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to get chat history"))
		return
	}

	log.Info("chat history fetched", slog.Int("count", len(messages)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(messages),
		"messages": messages,
	}))
}
