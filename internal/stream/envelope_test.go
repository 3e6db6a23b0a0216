package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibely/vibely-backend/internal/domain"
)

func TestEnvelope_ConstructorsValidate(t *testing.T) {
	msg := &domain.Message{ID: "m1", FromUserID: "alice", ToUserID: "bob", Text: "hi"}

	for _, env := range []Envelope{
		NewMessageEnvelope(msg),
		UnsentEnvelope("m1"),
		HiddenEnvelope("m1"),
		CorrectedEnvelope(msg),
	} {
		assert.NoError(t, env.Validate(), "type %s", env.Type)
	}
}

func TestEnvelope_ValidateRejectsMissingPayload(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{"message without body", Envelope{Type: EventNewMessage}},
		{"correction without body", Envelope{Type: EventCorrected}},
		{"unsent without id", Envelope{Type: EventUnsent}},
		{"hidden without id", Envelope{Type: EventHidden}},
		{"unknown tag", Envelope{Type: "typing"}},
		{"empty tag", Envelope{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.env.Validate())
		})
	}
}

func TestParseEnvelope_RoundTrip(t *testing.T) {
	msg := &domain.Message{ID: "m1", FromUserID: "alice", ToUserID: "bob", Text: "hi"}
	raw, err := json.Marshal(NewMessageEnvelope(msg))
	assert.NoError(t, err)

	env, err := ParseEnvelope(raw)
	assert.NoError(t, err)
	assert.Equal(t, EventNewMessage, env.Type)
	assert.Equal(t, "m1", env.Message.ID)
}

func TestParseEnvelope_OmitsEmptyVariants(t *testing.T) {
	raw, _ := json.Marshal(UnsentEnvelope("m1"))

	assert.JSONEq(t, `{"type":"unsent","messageId":"m1"}`, string(raw))
}

func TestParseEnvelope_RejectsGarbage(t *testing.T) {
	_, err := ParseEnvelope([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte(`{"type":"message"}`))
	assert.Error(t, err)
}
