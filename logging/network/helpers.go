package network

import (
	"context"

	"corsairs/server/logging"
)

const (
	// EventSendFailed is emitted when a snapshot write to a session fails.
	EventSendFailed logging.EventType = "network.send_failed"
	// EventMalformed is emitted when an inbound payload cannot be decoded.
	EventMalformed logging.EventType = "network.malformed"
)

// SendFailedPayload records the broken session.
type SendFailedPayload struct {
	Error string `json:"error"`
}

// MalformedPayload records the undecodable inbound message.
type MalformedPayload struct {
	Error string `json:"error"`
}

// SendFailed publishes a snapshot delivery failure.
func SendFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SendFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSendFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// Malformed publishes a decode failure for an inbound message.
func Malformed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MalformedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMalformed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
