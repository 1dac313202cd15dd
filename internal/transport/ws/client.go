package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	log    *zap.Logger

	// subscribedContexts tracks which channels/conversations this client
	// listens to; panel is its single exclusive side panel.
	subscribedContexts map[uuid.UUID]struct{}
	panel              domain.PanelState
	mu                 sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, log *zap.Logger) *Client {
	return &Client{
		hub:                hub,
		conn:               conn,
		userID:             userID,
		log:                log,
		subscribedContexts: make(map[uuid.UUID]struct{}),
		panel:              domain.ClosedPanel(),
		send:               make(chan []byte, sendBufSize),
		done:               make(chan struct{}),
	}
}

// IsSubscribed checks if this client is subscribed to a context.
func (c *Client) IsSubscribed(contextID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscribedContexts[contextID]
	return ok
}

// Subscribe adds a context subscription.
func (c *Client) Subscribe(contextID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedContexts[contextID] = struct{}{}
}

// Unsubscribe removes a context subscription, releasing the live window.
func (c *Client) Unsubscribe(contextID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedContexts, contextID)
}

func (c *Client) Panel() domain.PanelState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.panel
}

func (c *Client) setPanel(p domain.PanelState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel = p
}

func (c *Client) ClosePanel() {
	c.setPanel(domain.ClosedPanel())
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug("ws: client disconnected", zap.String("user_id", c.userID.String()))
			} else {
				c.log.Warn("ws: read error", zap.String("user_id", c.userID.String()), zap.Error(err))
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Warn("ws: write error", zap.String("user_id", c.userID.String()), zap.Error(err))
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeContextSubscribe:
		var p ContextPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid context.subscribe payload")
			return
		}
		c.Subscribe(p.ContextID)

	case EventTypeContextUnsubscribe:
		var p ContextPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid context.unsubscribe payload")
			return
		}
		c.Unsubscribe(p.ContextID)

	case EventTypePanelOpenThread:
		var p PanelOpenThreadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid panel.open_thread payload")
			return
		}
		// Opening a thread replaces whatever panel was open.
		c.setPanel(domain.ThreadPanel(p.MessageID))

	case EventTypePanelOpenProfile:
		var p PanelOpenProfilePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid panel.open_profile payload")
			return
		}
		c.setPanel(domain.ProfilePanel(p.MemberID))

	case EventTypePanelClose:
		c.ClosePanel()

	case EventTypeTypingStart, EventTypeTypingStop:
		if event.ContextID == nil {
			c.sendError("INVALID_PAYLOAD", "context_id required for typing events")
			return
		}
		c.hub.HandleTyping(c, event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
