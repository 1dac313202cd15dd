package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/metrics"
	"go.uber.org/zap"
)

// Hub manages all active WebSocket clients and routes events to context
// subscribers. The clients map is touched only inside Run.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg

	log *zap.Logger
}

type broadcastMsg struct {
	contextID uuid.UUID
	data      []byte
	// deletedMessageID is set for message.deleted events so the hub can
	// close thread panels open on that root.
	deletedMessageID *uuid.UUID
	excludeID        *uuid.UUID
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		log:        log,
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// a reconnect replaces the stale connection
			if old, ok := h.clients[client.userID]; ok {
				h.drop(old)
			}
			h.clients[client.userID] = client
			metrics.ConnectedClients.Inc()
			h.log.Info("ws hub: client connected",
				zap.String("user_id", client.userID.String()), zap.Int("total", len(h.clients)))

			h.broadcastPresence(client.userID, "online")

		case client := <-h.unregister:
			// a stale connection's late unregister must not evict a live one
			if current, ok := h.clients[client.userID]; ok && current == client {
				h.drop(client)
				h.log.Info("ws hub: client disconnected",
					zap.String("user_id", client.userID.String()), zap.Int("total", len(h.clients)))

				h.broadcastPresence(client.userID, "offline")
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
			if msg.deletedMessageID != nil {
				h.closeThreadPanels(*msg.deletedMessageID)
			}
		}
	}
}

func (h *Hub) deliver(msg *broadcastMsg) {
	for _, client := range h.clients {
		if msg.excludeID != nil && client.userID == *msg.excludeID {
			continue
		}
		if !client.IsSubscribed(msg.contextID) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			// Client buffer full - disconnect
			h.drop(client)
		}
	}
}

// closeThreadPanels pushes panel.closed to every client whose open thread
// panel roots at the deleted message, then resets their panel.
func (h *Hub) closeThreadPanels(rootID uuid.UUID) {
	evt, err := NewEvent(EventTypePanelClosed, nil, PanelClosedPayload{MessageID: rootID})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		root, open := client.Panel().ThreadRoot()
		if !open || root != rootID {
			continue
		}
		client.ClosePanel()
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client.userID)
	close(client.send)
	close(client.done)
	metrics.ConnectedClients.Dec()
}

// Dispatch routes a server→client event to all subscribers of its context.
func (h *Hub) Dispatch(event *Event) {
	if event.ContextID == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws hub: marshal error", zap.Error(err))
		return
	}

	msg := &broadcastMsg{contextID: *event.ContextID, data: data}
	if event.Type == EventTypeMessageDeleted {
		var p MessageDeletedPayload
		if err := json.Unmarshal(event.Payload, &p); err == nil {
			msg.deletedMessageID = &p.ID
		}
	}
	h.broadcast <- msg
}

// HandleTyping relays typing starts to the sender's context, excluding the
// sender itself. Stops are not relayed; clients expire typing on a timeout.
func (h *Hub) HandleTyping(sender *Client, event *Event) {
	if event.Type != EventTypeTypingStart {
		return
	}
	contextID := *event.ContextID

	evt, err := NewEvent(EventTypeTyping, &contextID, TypingPayload{MemberID: sender.userID})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.broadcast <- &broadcastMsg{contextID: contextID, data: data, excludeID: &sender.userID}
}

// broadcastPresence sends online/offline to all connected clients.
func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, nil, PresencePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		if client.userID == userID {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}
