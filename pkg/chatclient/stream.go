package chatclient

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vibely/vibely-backend/internal/stream"
)

// Stream is one user's live event channel. Envelopes are validated at this
// deserialization boundary; everything downstream dispatches on the tag alone.
type Stream struct {
	body      io.ReadCloser
	events    chan stream.Envelope
	err       error
	quit      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// OpenStream opens the long-lived SSE stream for the authenticated user.
// The returned Stream must be closed by the caller.
func (c *Client) OpenStream(ctx context.Context) (*Stream, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/api/v1/stream")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		resp.RawBody().Close()
		return nil, fmt.Errorf("chatclient: stream open failed with status %d", resp.StatusCode())
	}

	s := &Stream{
		body:   resp.RawBody(),
		events: make(chan stream.Envelope),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events yields decoded envelopes in server push order. The channel closes
// when the stream ends; check Err afterwards.
func (s *Stream) Events() <-chan stream.Envelope { return s.events }

// Err reports why the stream ended, nil on a clean close
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close tears the stream down. Closing the body alone cannot unblock a
// delivery waiting on Events(), so quit releases the read loop too.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	return s.body.Close()
}

// readLoop parses SSE frames: "data:" lines carry envelopes, ":" comment
// lines (connect banner, heartbeats) are skipped, a blank line ends a frame.
func (s *Stream) readLoop() {
	defer close(s.events)
	defer close(s.done)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []byte
	for scanner.Scan() {
		line := scanner.Bytes()

		switch {
		case len(line) == 0:
			// Frame boundary: dispatch accumulated data, if any.
			if len(data) > 0 {
				env, err := stream.ParseEnvelope(data)
				data = nil
				if err != nil {
					s.err = err
					return
				}
				select {
				case s.events <- env:
				case <-s.quit:
					return
				}
			}
		case line[0] == ':':
			// Comment (heartbeat); ignore.
		case bytes.HasPrefix(line, []byte("data:")):
			payload := bytes.TrimPrefix(line, []byte("data:"))
			payload = bytes.TrimPrefix(payload, []byte(" "))
			data = append(data, payload...)
		}
	}

	if err := scanner.Err(); err != nil && s.err == nil {
		s.err = err
	}
}
