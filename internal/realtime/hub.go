// Package realtime реализует websocket-хаб каналов чата по контрактам.
//
// На каждый контракт создаётся комната; вставленные сообщения и эфемерные
// события "печатает" рассылаются всем подключённым участникам комнаты.
// События typing нигде не сохраняются. Комната освобождается, когда её
// покидает последний клиент.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/plan-connect/internal/metrics"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// Виды событий, доставляемых подписчикам комнаты.
const (
	EventMessage = "message"
	EventTyping  = "typing"
)

// Event — типизированный конверт события, отправляемого клиенту.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// broadcast — внутреннее задание на рассылку по комнате.
// ExceptID исключает отправителя (используется для typing-событий).
type broadcast struct {
	event    Event
	exceptID string
}

// Room управляет подключениями одного контракта и рассылкой событий.
type Room struct {
	contractID string
	clients    map[string]*Client
	mu         sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcasts chan broadcast

	ctx    context.Context
	cancel context.CancelFunc
	hub    *Hub
	log    *slog.Logger
}

// Hub хранит комнаты по идентификаторам контрактов.
type Hub struct {
	rooms map[string]*Room
	mu    sync.RWMutex
	log   *slog.Logger
}

// NewHub создаёт пустой хаб.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// GetOrCreateRoom возвращает комнату контракта, создавая её при необходимости.
func (h *Hub) GetOrCreateRoom(contractID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, exists := h.rooms[contractID]; exists {
		return room
	}

	ctx, cancel := context.WithCancel(context.Background())
	room := &Room{
		contractID: contractID,
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcasts: make(chan broadcast, 256),
		ctx:        ctx,
		cancel:     cancel,
		hub:        h,
		log:        h.log,
	}
	h.rooms[contractID] = room

	go room.run()

	return room
}

// BroadcastMessage рассылает сообщение всем подписчикам комнаты контракта.
// Если комнаты нет (никто не подключён), событие просто теряется:
// история всё равно доступна через fetch.
func (h *Hub) BroadcastMessage(contractID string, msg *models.Message) {
	h.mu.RLock()
	room, exists := h.rooms[contractID]
	h.mu.RUnlock()
	if !exists {
		return
	}
	room.Broadcast(Event{Type: EventMessage, Data: msg}, "")
}

// BroadcastTyping рассылает эфемерное событие "печатает" по комнате,
// исключая отправителя. Доставка негарантированная: сигнал чисто
// косметический.
func (h *Hub) BroadcastTyping(clientID string, ev models.TypingEvent) {
	h.mu.RLock()
	room, exists := h.rooms[ev.ContractID]
	h.mu.RUnlock()
	if !exists {
		return
	}
	room.Broadcast(Event{Type: EventTyping, Data: ev}, clientID)
}

// removeRoom снимает комнату с учёта и останавливает её цикл.
func (h *Hub) removeRoom(contractID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, exists := h.rooms[contractID]; exists {
		room.cancel()
		delete(h.rooms, contractID)
	}
}

// Join регистрирует клиента в комнате.
func (r *Room) Join(c *Client) {
	c.room = r
	select {
	case r.register <- c:
	case <-r.ctx.Done():
	}
}

// Leave снимает клиента с учёта. Опустевшую комнату освобождает цикл
// комнаты после обработки снятия.
func (r *Room) Leave(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.ctx.Done():
	}
}

// Broadcast ставит событие в очередь рассылки комнаты.
func (r *Room) Broadcast(ev Event, exceptID string) {
	select {
	case r.broadcasts <- broadcast{event: ev, exceptID: exceptID}:
	case <-r.ctx.Done():
	}
}

// run — основной цикл комнаты: регистрация, снятие с учёта, рассылка.
func (r *Room) run() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case client := <-r.register:
			r.mu.Lock()
			r.clients[client.ID] = client
			r.mu.Unlock()
			metrics.WSConnections.Inc()

		case client := <-r.unregister:
			r.mu.Lock()
			if _, ok := r.clients[client.ID]; ok {
				delete(r.clients, client.ID)
				close(client.Send)
				metrics.WSConnections.Dec()
			}
			empty := len(r.clients) == 0
			r.mu.Unlock()
			if empty {
				r.hub.removeRoom(r.contractID)
				return
			}

		case b := <-r.broadcasts:
			r.mu.RLock()
			for id, client := range r.clients {
				if id == b.exceptID {
					continue
				}
				select {
				case client.Send <- b.event:
				default:
					// очередь клиента переполнена, событие отбрасывается
				}
			}
			r.mu.RUnlock()
		}
	}
}
