package websocket

import (
	"encoding/json"
	"fmt"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

// Envelope is an inbound frame: {type, data}.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EventHandler receives inbound events in delivery order, one at a time.
type EventHandler interface {
	OnNewMessage(evt entity.NewMessageEvent)
	OnUserOnline(evt entity.PresenceEvent)
	OnUserOffline(evt entity.PresenceEvent)
	OnUserTyping(evt entity.TypingEvent)
	OnMessageRead(evt entity.MessageReadEvent)
}

// EncodeFrame builds an outbound frame with type flattened next to the
// payload fields: {"type":"typing","chat_id":"c1","is_typing":true}.
func EncodeFrame(frameType string, payload interface{}) ([]byte, error) {
	fields := map[string]interface{}{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("payload for %s is not an object: %w", frameType, err)
		}
	}
	fields["type"] = frameType
	return json.Marshal(fields)
}

// dispatch decodes one frame and routes it. Bad frames are logged and
// dropped; a panicking handler is contained to the frame that caused it.
func dispatch(handler EventHandler, frame []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling realtime frame: %v", r)
			metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
		}
	}()

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		logger.Warn("Dropping malformed realtime frame: %v", err)
		metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
		return
	}

	// Some servers send the payload flat next to type instead of under data.
	payload := []byte(env.Data)
	if len(payload) == 0 || string(payload) == "null" {
		payload = frame
	}

	switch env.Type {
	case entity.EventNewMessage:
		var evt entity.NewMessageEvent
		if !decode(env.Type, payload, &evt) {
			return
		}
		if evt.ChatID == "" {
			evt.ChatID = evt.Message.ChatID
		}
		if evt.Message.ChatID == "" {
			evt.Message.ChatID = evt.ChatID
		}
		if evt.ChatID == "" || evt.Message.ID == "" {
			logger.Warn("Dropping new_message without chat or message id")
			metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
			return
		}
		handler.OnNewMessage(evt)

	case entity.EventUserOnline, entity.EventUserOffline:
		var evt entity.PresenceEvent
		if !decode(env.Type, payload, &evt) {
			return
		}
		if evt.UserID == "" {
			logger.Warn("Dropping %s without user_id", env.Type)
			metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
			return
		}
		if env.Type == entity.EventUserOnline {
			handler.OnUserOnline(evt)
		} else {
			handler.OnUserOffline(evt)
		}

	case entity.EventUserTyping:
		var evt entity.TypingEvent
		if !decode(env.Type, payload, &evt) {
			return
		}
		if evt.UserID == "" || evt.ChatID == "" {
			logger.Warn("Dropping user_typing without user_id or chat_id")
			metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
			return
		}
		handler.OnUserTyping(evt)

	case entity.EventMessageRead:
		var evt entity.MessageReadEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			logger.Debug("message_read payload not understood, keeping raw: %v", err)
		}
		evt.Raw = append(json.RawMessage(nil), payload...)
		handler.OnMessageRead(evt)

	default:
		logger.Info("Ignoring unknown realtime event type %q", env.Type)
		metrics.WSFramesDropped.WithLabelValues(metrics.DropUnknownType).Inc()
		return
	}

	metrics.WSFramesReceived.WithLabelValues(env.Type).Inc()
}

func decode(eventType string, payload []byte, out interface{}) bool {
	if err := json.Unmarshal(payload, out); err != nil {
		logger.Warn("Dropping %s frame with bad payload: %v", eventType, err)
		metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
		return false
	}
	return true
}
