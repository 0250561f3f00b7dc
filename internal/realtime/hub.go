package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks websocket clients keyed by user so badge events reach only the
// dashboard sessions of the user they belong to.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once

	mutex  sync.RWMutex
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.stop:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set := h.clients[client.userID]
			if set == nil {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Debug("ws client connected", zap.String("user_id", client.userID.String()))
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.dropClient(client)
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	h.mutex.Lock()
	if set, ok := h.clients[client.userID]; ok {
		if _, ok := set[client]; ok {
			delete(set, client)
			close(client.send)
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
	h.mutex.Unlock()
	if h.logger != nil {
		h.logger.Debug("ws client disconnected", zap.String("user_id", client.userID.String()))
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser delivers message to every open dashboard connection of one
// user. Slow clients are disconnected rather than blocking the caller.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	if h == nil {
		return
	}
	h.mutex.RLock()
	snapshot := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		snapshot = append(snapshot, c)
	}
	h.mutex.RUnlock()

	for _, client := range snapshot {
		select {
		case client.send <- message:
		default:
			h.unregister <- client
		}
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Stop shuts the hub loop down and closes every client send channel.
func (h *Hub) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.stopped
}
