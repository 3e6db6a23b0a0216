package chatclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibely/vibely-backend/internal/domain"
	"github.com/vibely/vibely-backend/internal/stream"
)

func openConversation(r *Reconciler, with string, texts ...string) []*domain.Message {
	msgs := make([]*domain.Message, 0, len(texts))
	for i, text := range texts {
		msgs = append(msgs, &domain.Message{
			ID:         string(rune('a' + i)),
			FromUserID: with,
			ToUserID:   "self",
			Text:       text,
		})
	}
	r.Open(with, msgs)
	return msgs
}

func TestReconciler_NewMessageAppendsToOpenConversation(t *testing.T) {
	r := NewReconciler("self", nil)
	openConversation(r, "alice", "one")

	r.Apply(stream.NewMessageEnvelope(&domain.Message{
		ID: "m2", FromUserID: "alice", ToUserID: "self", Text: "two",
	}))

	view := r.View()
	assert.Len(t, view, 2)
	assert.Equal(t, "two", view[1].Message.Text)
}

func TestReconciler_NewMessageFromOtherUserNotifies(t *testing.T) {
	var notified []Notification
	r := NewReconciler("self", func(n Notification) { notified = append(notified, n) })
	openConversation(r, "alice", "one")

	r.Apply(stream.NewMessageEnvelope(&domain.Message{
		ID: "m2", FromUserID: "carol", ToUserID: "self", Text: "psst",
	}))

	assert.Len(t, r.View(), 1, "the open conversation is untouched")
	assert.Len(t, notified, 1)
	assert.Equal(t, "carol", notified[0].FromUserID)
}

func TestReconciler_NewMessageWithNoOpenConversationNotifies(t *testing.T) {
	var notified []Notification
	r := NewReconciler("self", func(n Notification) { notified = append(notified, n) })

	r.Apply(stream.NewMessageEnvelope(&domain.Message{
		ID: "m1", FromUserID: "alice", ToUserID: "self", Text: "hi",
	}))

	assert.Empty(t, r.View())
	assert.Len(t, notified, 1)
}

func TestReconciler_CloseConversationSwitchesToNotify(t *testing.T) {
	var notified []Notification
	r := NewReconciler("self", func(n Notification) { notified = append(notified, n) })
	openConversation(r, "alice", "one")
	r.CloseConversation()

	r.Apply(stream.NewMessageEnvelope(&domain.Message{
		ID: "m2", FromUserID: "alice", ToUserID: "self", Text: "two",
	}))

	assert.Empty(t, r.View())
	assert.Len(t, notified, 1)
}

func TestReconciler_UnsentRemovesEntry(t *testing.T) {
	r := NewReconciler("self", nil)
	msgs := openConversation(r, "alice", "one", "two", "three")

	r.Apply(stream.UnsentEnvelope(msgs[1].ID))

	view := r.View()
	assert.Len(t, view, 2)
	assert.Equal(t, "one", view[0].Message.Text)
	assert.Equal(t, "three", view[1].Message.Text)
}

func TestReconciler_RemoveIsIdempotent(t *testing.T) {
	r := NewReconciler("self", nil)
	msgs := openConversation(r, "alice", "one")

	r.Apply(stream.UnsentEnvelope(msgs[0].ID))
	assert.NotPanics(t, func() {
		r.Apply(stream.UnsentEnvelope(msgs[0].ID))
		r.Apply(stream.HiddenEnvelope(msgs[0].ID))
	})
	assert.Empty(t, r.View())
}

func TestReconciler_CorrectionReplacesPreservingLocalState(t *testing.T) {
	r := NewReconciler("self", nil)
	msgs := openConversation(r, "alice", "teh cat")
	r.SetExpanded(msgs[0].ID, true)

	corrected := *msgs[0]
	corrected.Corrections = []domain.Correction{{EditorID: "self", Text: "the cat"}}
	r.Apply(stream.CorrectedEnvelope(&corrected))

	view := r.View()
	assert.Len(t, view, 1)
	assert.Len(t, view[0].Message.Corrections, 1)
	assert.True(t, view[0].Expanded, "local UI state survives the replace")
}

func TestReconciler_CorrectionForUnknownMessageIsNoOp(t *testing.T) {
	r := NewReconciler("self", nil)
	openConversation(r, "alice", "one")

	r.Apply(stream.CorrectedEnvelope(&domain.Message{ID: "ghost", Text: "boo"}))

	view := r.View()
	assert.Len(t, view, 1)
	assert.Equal(t, "one", view[0].Message.Text)
}

func TestReconciler_ViewIsACopy(t *testing.T) {
	r := NewReconciler("self", nil)
	openConversation(r, "alice", "one")

	view := r.View()
	view[0].Message.Text = "tampered"

	assert.Equal(t, "one", r.View()[0].Message.Text)
}
