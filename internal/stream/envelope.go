package stream

import (
	"encoding/json"
	"fmt"

	"github.com/vibely/vibely-backend/internal/domain"
)

// Event type tags on the wire
const (
	EventNewMessage = "message"
	EventUnsent     = "unsent"
	EventHidden     = "deleted_for_me"
	EventCorrected  = "correction"
)

// Envelope is the discriminated event payload pushed over a live stream.
// Exactly one variant is populated per envelope, selected by Type; the
// envelope exists only in transit and is never persisted.
type Envelope struct {
	Type      string          `json:"type"`
	Message   *domain.Message `json:"message,omitempty"`
	MessageID string          `json:"messageId,omitempty"`
}

// NewMessageEnvelope wraps a freshly created message for the recipient
func NewMessageEnvelope(m *domain.Message) Envelope {
	return Envelope{Type: EventNewMessage, Message: m}
}

// UnsentEnvelope announces a sender-side hard delete
func UnsentEnvelope(messageID string) Envelope {
	return Envelope{Type: EventUnsent, MessageID: messageID}
}

// HiddenEnvelope announces a per-viewer hide back to the viewer's own stream
func HiddenEnvelope(messageID string) Envelope {
	return Envelope{Type: EventHidden, MessageID: messageID}
}

// CorrectedEnvelope carries the full corrected message state
func CorrectedEnvelope(m *domain.Message) Envelope {
	return Envelope{Type: EventCorrected, Message: m}
}

// Validate checks that the envelope carries exactly the payload its tag
// requires. Consumers validate once here, at the deserialization boundary,
// and dispatch on Type alone afterwards.
func (e *Envelope) Validate() error {
	switch e.Type {
	case EventNewMessage, EventCorrected:
		if e.Message == nil {
			return fmt.Errorf("stream: %q envelope missing message", e.Type)
		}
	case EventUnsent, EventHidden:
		if e.MessageID == "" {
			return fmt.Errorf("stream: %q envelope missing messageId", e.Type)
		}
	default:
		return fmt.Errorf("stream: unknown envelope type %q", e.Type)
	}
	return nil
}

// ParseEnvelope decodes and validates a wire envelope
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("stream: decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
