// Package chatws реализует websocket-вход в комнату чата контракта.
//
// Браузерный WebSocket API не позволяет выставить заголовок Authorization,
// поэтому JWT передаётся параметром запроса token. После проверки токена
// и участия в контракте соединение апгрейдится и подключается к комнате.
package chatws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
	"github.com/magabrotheeeer/plan-connect/internal/realtime"
)

// AuthService описывает интерфейс проверки JWT.
type AuthService interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// ChatService описывает интерфейс проверки доступа к чату контракта.
type ChatService interface {
	Authorize(ctx context.Context, contractID, userUID, role string) (*models.Contract, error)
}

// Handler управляет websocket-подключениями к комнатам чата.
type Handler struct {
	log      *slog.Logger
	auth     AuthService
	chat     ChatService
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// New создает новый Handler с переданными логгером, сервисами и хабом.
func New(log *slog.Logger, auth AuthService, chat ChatService, hub *realtime.Hub) *Handler {
	return &Handler{
		log:  log,
		auth: auth,
		chat: chat,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP godoc
// @Summary Подключиться к чату
// @Description Апгрейдит соединение до websocket и подключает пользователя к комнате контракта.
// @Tags Chat
// @Param id path string true "ID контракта"
// @Param token query string true "JWT"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует или невалиден"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к контракту"
// @Failure 404 {object} response.ErrorResponse "Контракт не найден"
// @Router /contracts/{id}/chat/ws [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.ws"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("token query parameter missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("token is required"))
		return
	}

	user, err := h.auth.ValidateToken(r.Context(), token)
	if err != nil {
		log.Error("invalid or expired token", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	contractID := chi.URLParam(r, "id")

	if _, err := h.chat.Authorize(r.Context(), contractID, user.UID, user.Role); err != nil {
		log.Error("chat access denied", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("chat access denied"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", sl.Err(err))
		return
	}

	client := realtime.NewClient(conn, user.UID, user.Username, user.Role)
	room := h.hub.GetOrCreateRoom(contractID)
	room.Join(client)

	log.Info("client joined chat room", sl.ContractID(contractID), sl.UID(user.UID))

	go client.WritePump()
	go client.ReadPump(h.hub)
}
