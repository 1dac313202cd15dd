package ws

import (
	"github.com/google/uuid"
	"github.com/tidehq/tide/internal/domain"
	"go.uber.org/zap"
)

// EventSink receives outbound feed events. The hub sink delivers to local
// clients; the Redis bridge publishes so every instance's hub delivers.
type EventSink interface {
	Deliver(evt *Event)
}

// HubSink delivers events straight to the local hub.
type HubSink struct {
	hub *Hub
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Deliver(evt *Event) {
	s.hub.Dispatch(evt)
}

// Notifier implements service.Notifier on top of an EventSink.
type Notifier struct {
	sink EventSink
	log  *zap.Logger
}

func NewNotifier(sink EventSink, log *zap.Logger) *Notifier {
	return &Notifier{sink: sink, log: log}
}

func (n *Notifier) NotifyNewMessage(msg *domain.Message) {
	n.emit(EventTypeMessageNew, msg.Context().ID(), MessagePayload{Message: *msg})
}

func (n *Notifier) NotifyEditedMessage(msg *domain.Message) {
	n.emit(EventTypeMessageEdited, msg.Context().ID(), MessagePayload{Message: *msg})
}

func (n *Notifier) NotifyDeletedMessage(contextID, messageID uuid.UUID) {
	n.emit(EventTypeMessageDeleted, contextID, MessageDeletedPayload{ID: messageID})
}

func (n *Notifier) NotifyReactionUpdated(contextID, messageID uuid.UUID, summaries []domain.ReactionSummary) {
	n.emit(EventTypeReactionUpdated, contextID, ReactionUpdatedPayload{MessageID: messageID, Summaries: summaries})
}

func (n *Notifier) NotifyThreadUpdated(contextID, rootID uuid.UUID, summary *domain.ThreadSummary) {
	n.emit(EventTypeThreadUpdated, contextID, ThreadUpdatedPayload{RootID: rootID, Summary: summary})
}

func (n *Notifier) emit(eventType string, contextID uuid.UUID, payload any) {
	evt, err := NewEvent(eventType, &contextID, payload)
	if err != nil {
		n.log.Error("ws notifier: marshal error", zap.String("type", eventType), zap.Error(err))
		return
	}
	n.sink.Deliver(evt)
}
