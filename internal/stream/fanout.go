package stream

import (
	"github.com/vibely/vibely-backend/internal/domain"
)

// Fanout translates message lifecycle results into envelopes and hands them
// to the registry. Pure translation plus delivery: no retry, no queue, no
// acknowledgment. Delivery is at-most-once and best-effort; the operation
// that triggered the fan-out has already succeeded by the time this runs,
// and Push never blocks, so callers never wait on a recipient.
type Fanout struct {
	registry *Registry
}

// NewFanout creates an event fanout over the given registry
func NewFanout(registry *Registry) *Fanout {
	return &Fanout{registry: registry}
}

// MessageCreated notifies the recipient of a new message
func (f *Fanout) MessageCreated(m *domain.Message) {
	f.registry.Push(m.ToUserID, NewMessageEnvelope(m))
}

// MessageUnsent notifies the counterpart that a message was hard-deleted.
// The requester already knows locally and updates without waiting for a push.
func (f *Fanout) MessageUnsent(targetID, messageID string) {
	f.registry.Push(targetID, UnsentEnvelope(messageID))
}

// MessageHidden echoes a per-viewer hide back to the viewer's own stream so
// other open views of the same conversation reconcile. The counterpart is
// never notified; the message stays fully visible to them.
func (f *Fanout) MessageHidden(viewerID, messageID string) {
	f.registry.Push(viewerID, HiddenEnvelope(messageID))
}

// MessageCorrected notifies the editor's counterpart with the full corrected
// message state.
func (f *Fanout) MessageCorrected(targetID string, m *domain.Message) {
	f.registry.Push(targetID, CorrectedEnvelope(m))
}
