package chatclient

import (
	"context"

	"github.com/vibely/vibely-backend/internal/domain"
	"github.com/vibely/vibely-backend/internal/stream"
)

// Entry is one message in the visible conversation view plus purely local UI
// state. Replacing a message on a correction keeps the local state intact.
type Entry struct {
	Message  domain.Message
	Expanded bool // e.g. an open context menu
}

// Notification is raised for events that do not target the open conversation
type Notification struct {
	FromUserID string
	Message    *domain.Message
}

// Reconciler folds inbound envelopes into a locally cached, ordered view of
// the conversation currently open. It is a single-threaded, order-preserving
// consumer: exactly one of append, remove, replace or notify fires per
// envelope, keyed solely on the envelope's tag.
type Reconciler struct {
	selfID   string
	openWith string // counterpart of the open conversation, "" when none
	entries  []Entry
	notify   func(Notification)
}

// NewReconciler creates a reconciler for the given user. notify may be nil.
func NewReconciler(selfID string, notify func(Notification)) *Reconciler {
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Reconciler{selfID: selfID, notify: notify}
}

// Open replaces the view with a freshly fetched conversation
func (r *Reconciler) Open(counterpartID string, messages []*domain.Message) {
	r.openWith = counterpartID
	r.entries = make([]Entry, 0, len(messages))
	for _, m := range messages {
		r.entries = append(r.entries, Entry{Message: *m})
	}
}

// CloseConversation empties the view; subsequent events only notify
func (r *Reconciler) CloseConversation() {
	r.openWith = ""
	r.entries = nil
}

// View returns the ordered visible conversation
func (r *Reconciler) View() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// SetExpanded toggles local UI state on a message, if present
func (r *Reconciler) SetExpanded(messageID string, expanded bool) {
	for i := range r.entries {
		if r.entries[i].Message.ID == messageID {
			r.entries[i].Expanded = expanded
			return
		}
	}
}

// Apply folds one envelope into the view. Envelopes were validated at the
// stream boundary, so dispatch is a plain exhaustive switch on the tag.
func (r *Reconciler) Apply(env stream.Envelope) {
	switch env.Type {
	case stream.EventNewMessage:
		m := env.Message
		if r.openWith != "" && m.Counterpart(r.selfID) == r.openWith {
			r.entries = append(r.entries, Entry{Message: *m})
			return
		}
		r.notify(Notification{FromUserID: m.FromUserID, Message: m})

	case stream.EventUnsent, stream.EventHidden:
		// Idempotent: an absent id (already removed, or duplicate
		// delivery) is a no-op.
		r.remove(env.MessageID)

	case stream.EventCorrected:
		r.replace(env.Message)
	}
}

// Run consumes a stream until it ends or ctx is cancelled
func (r *Reconciler) Run(ctx context.Context, s *Stream) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-s.Events():
			if !ok {
				return s.Err()
			}
			r.Apply(env)
		}
	}
}

func (r *Reconciler) remove(messageID string) {
	for i := range r.entries {
		if r.entries[i].Message.ID == messageID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// replace swaps in the corrected message's field values while preserving
// local UI state; an absent id is a no-op.
func (r *Reconciler) replace(m *domain.Message) {
	for i := range r.entries {
		if r.entries[i].Message.ID == m.ID {
			r.entries[i].Message = *m
			return
		}
	}
}
