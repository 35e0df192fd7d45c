package ws

import (
	"encoding/json"
	"sync"

	"quant_trainer/internal/logger"
	"quant_trainer/internal/session"
)

// Hub раздает события сессий по ws-соединениям пользователей.
// У пользователя может быть несколько соединений (несколько вкладок).
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{} // userID -> соединения
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// Publish шлет событие сессии во все соединения пользователя.
// Отправка неблокирующая: медленное соединение теряет события,
// актуальное состояние клиент добирает через GET /session.
func (h *Hub) Publish(userID int64, ev session.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: не удалось сериализовать событие", "error", err, "type", ev.Type)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Debug("ws: канал клиента заполнен, событие пропущено", "user_id", userID, "type", ev.Type)
		}
	}
}

// Connections возвращает число активных соединений (для /stats)
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}
