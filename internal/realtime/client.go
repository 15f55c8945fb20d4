package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundSize = 512
	sendBufferSize = 32
)

// Client — одно websocket-подключение участника контракта.
type Client struct {
	ID       string
	UserUID  string
	Username string
	Role     string

	conn *websocket.Conn
	room *Room
	Send chan Event
}

// NewClient создаёт клиента комнаты поверх установленного соединения.
// conn может быть nil для рассылки без живого сокета (например в тестах
// хаба проверяется только канал Send).
func NewClient(conn *websocket.Conn, userUID, username, role string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserUID:  userUID,
		Username: username,
		Role:     role,
		conn:     conn,
		Send:     make(chan Event, sendBufferSize),
	}
}

// inboundFrame — кадр, принимаемый от клиента. Единственный поддерживаемый
// тип — typing; все остальные кадры молча игнорируются.
type inboundFrame struct {
	Type string `json:"type"`
}

// ReadPump читает входящие кадры соединения до его закрытия.
// Typing-кадры транслируются остальным участникам комнаты через хаб.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		c.room.Leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.room.log.Debug("websocket closed unexpectedly", sl.Err(err))
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Type != EventTyping {
			continue
		}

		h.BroadcastTyping(c.ID, models.TypingEvent{
			AuthorUID:  c.UserUID,
			AuthorName: c.Username,
			ContractID: c.room.contractID,
			Timestamp:  time.Now().UnixMilli(),
		})
	}
}

// WritePump отдаёт события из очереди Send в соединение и поддерживает
// его живым периодическими ping-кадрами.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
