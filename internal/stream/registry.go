package stream

import (
	"sync"

	"github.com/rs/zerolog"

	pkglogger "github.com/vibely/vibely-backend/pkg/logger"
)

// Registry holds at most one live output channel per user id. It is a
// process-scoped service object: constructed once at startup, injected into
// whoever pushes events, torn down at shutdown. The map is the only shared
// mutable state; the mutex guards O(1) sections only and the channel write
// itself happens outside the lock.
//
// The registry is deliberately single-process and in-memory. An offline
// recipient at push time misses the event; a reconnecting client restores
// consistency with a full conversation fetch, not an event replay.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]*Conn
	buffer int
	log    zerolog.Logger
}

// NewRegistry creates a connection registry. buffer is the per-connection
// event queue depth before a stalled consumer is evicted.
func NewRegistry(buffer int) *Registry {
	if buffer <= 0 {
		buffer = 64
	}
	return &Registry{
		conns:  make(map[string]*Conn),
		buffer: buffer,
		log:    pkglogger.Get().With().Str("component", "stream").Logger(),
	}
}

// Register opens a connection for the user, replacing and closing any prior
// one. A user has at most one live stream; the registry never multiplexes.
func (r *Registry) Register(userID string) *Conn {
	conn := newConn(userID, r.buffer)

	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if prev != nil {
		prev.close()
		r.log.Debug().Str("user_id", userID).Msg("replaced live stream connection")
	} else {
		activeConnections.Inc()
	}
	return conn
}

// Unregister removes the mapping only if the stored connection is still the
// given one, so a stale close racing a fresh register cannot evict the new
// connection. The given connection is closed either way.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	removed := r.conns[conn.userID] == conn
	if removed {
		delete(r.conns, conn.userID)
	}
	r.mu.Unlock()

	conn.close()
	if removed {
		activeConnections.Dec()
	}
}

// Lookup returns the live connection for a user, if any
func (r *Registry) Lookup(userID string) (*Conn, bool) {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	r.mu.Unlock()
	return conn, ok
}

// Push delivers an envelope to the user's live stream. Fire-and-forget by
// contract: no registered connection is a no-op, and a failed write evicts
// the connection and logs rather than returning an error to the caller.
func (r *Registry) Push(userID string, env Envelope) {
	r.mu.Lock()
	conn := r.conns[userID]
	r.mu.Unlock()

	if conn == nil {
		eventsDropped.WithLabelValues("offline").Inc()
		return
	}

	if err := conn.send(env); err != nil {
		eventsDropped.WithLabelValues("evicted").Inc()
		r.log.Warn().
			Str("user_id", userID).
			Str("event_type", env.Type).
			Err(err).
			Msg("evicting live stream connection")
		r.Unregister(conn)
		return
	}

	eventsPushed.WithLabelValues(env.Type).Inc()
}

// ActiveCount returns the number of registered connections
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	n := len(r.conns)
	r.mu.Unlock()
	return n
}

// Shutdown closes every registered connection and empties the registry
func (r *Registry) Shutdown() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for _, c := range conns {
		c.close()
		activeConnections.Dec()
	}
	r.log.Info().Int("connections", len(conns)).Msg("stream registry shut down")
}
