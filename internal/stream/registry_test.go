package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibely/vibely-backend/internal/domain"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(8)

	conn := r.Register("alice")

	got, ok := r.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, conn, got)
	assert.Equal(t, 1, r.ActiveCount())
}

func TestRegistry_ReRegisterReplacesAndClosesOld(t *testing.T) {
	r := NewRegistry(8)

	old := r.Register("alice")
	replacement := r.Register("alice")

	got, _ := r.Lookup("alice")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, r.ActiveCount())

	// The superseded channel is closed so its reader loop terminates.
	_, open := <-old.Events()
	assert.False(t, open)
}

func TestRegistry_UnregisterRemovesConn(t *testing.T) {
	r := NewRegistry(8)
	conn := r.Register("alice")

	r.Unregister(conn)

	_, ok := r.Lookup("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, r.ActiveCount())
}

func TestRegistry_UnregisterStaleConnKeepsReplacement(t *testing.T) {
	r := NewRegistry(8)

	old := r.Register("alice")
	replacement := r.Register("alice")

	// A late disconnect from the replaced stream must not tear down the
	// live one.
	r.Unregister(old)

	got, ok := r.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestRegistry_PushDeliversToRegisteredUser(t *testing.T) {
	r := NewRegistry(8)
	conn := r.Register("bob")

	msg := &domain.Message{ID: "m1", FromUserID: "alice", ToUserID: "bob", Text: "hi"}
	r.Push("bob", NewMessageEnvelope(msg))

	env := <-conn.Events()
	assert.Equal(t, EventNewMessage, env.Type)
	assert.Equal(t, "m1", env.Message.ID)
}

func TestRegistry_PushToOfflineUserIsNoOp(t *testing.T) {
	r := NewRegistry(8)

	assert.NotPanics(t, func() {
		r.Push("nobody", UnsentEnvelope("m1"))
	})
}

func TestRegistry_PushEvictsSlowConsumer(t *testing.T) {
	r := NewRegistry(1)
	conn := r.Register("bob")

	// First event fills the buffer, second finds it full and evicts.
	r.Push("bob", UnsentEnvelope("m1"))
	r.Push("bob", UnsentEnvelope("m2"))

	_, ok := r.Lookup("bob")
	assert.False(t, ok)

	// The buffered event is still readable, then the channel closes.
	env, open := <-conn.Events()
	assert.True(t, open)
	assert.Equal(t, "m1", env.MessageID)
	_, open = <-conn.Events()
	assert.False(t, open)
}

func TestRegistry_ShutdownClosesEverything(t *testing.T) {
	r := NewRegistry(8)
	alice := r.Register("alice")
	bob := r.Register("bob")

	r.Shutdown()

	assert.Equal(t, 0, r.ActiveCount())
	_, open := <-alice.Events()
	assert.False(t, open)
	_, open = <-bob.Events()
	assert.False(t, open)
}

func TestConn_SendAfterCloseFails(t *testing.T) {
	c := newConn("alice", 4)
	c.close()

	err := c.send(UnsentEnvelope("m1"))
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	c := newConn("alice", 4)

	assert.NotPanics(t, func() {
		c.close()
		c.close()
	})
}
