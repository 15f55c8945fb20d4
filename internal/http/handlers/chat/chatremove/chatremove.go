// Package chatremove реализует HTTP-обработчик удаления сообщения чата.
// Удалять можно только собственные сообщения.
package chatremove

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
)

// Service описывает интерфейс бизнес-логики удаления сообщения.
type Service interface {
	Delete(ctx context.Context, messageID, userUID string) error
}

// Handler управляет HTTP-запросами удаления сообщений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить сообщение
// @Description Удаляет собственное сообщение чата.
// @Tags Chat
// @Produce  json
// @Param messageID path string true "ID сообщения"
// @Success 200 {object} response.Response "Сообщение удалено"
// @Failure 403 {object} response.ErrorResponse "Сообщение принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Сообщение не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /chat/messages/{messageID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.remove"

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

	messageID := chi.URLParam(r, "messageID")

	if err := h.service.Delete(r.Context(), messageID, userUID); err != nil {
		log.Error("failed to delete message", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to delete message"))
		return
	}

	log.Info("message deleted", slog.String("message_id", messageID))
	render.JSON(w, r, response.OK())
}
