package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/vibely/vibely-backend/internal/domain"
)

// Client is the command-surface client: request/response calls, not the
// stream. One instance per authenticated user.
type Client struct {
	rest *resty.Client
}

// New creates a chat client for the given API base URL and bearer token
func New(baseURL, token string) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")
	return &Client{rest: rest}
}

// Media is a raw upload handed to the media storage collaborator on send
type Media struct {
	Filename string
	Reader   io.Reader
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Meta  *apiMeta        `json:"meta"`
	Error *apiError       `json:"error"`
}

type apiMeta struct {
	UnreadCount int64 `json:"unread_count"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Send creates a message. At least one of text and media must be present;
// the server rejects empty payloads.
func (c *Client) Send(ctx context.Context, toUserID, text string, media ...Media) (*domain.Message, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"to_user_id": toUserID,
			"text":       text,
		})
	for _, m := range media {
		req.SetFileReader("media", m.Filename, m.Reader)
	}

	resp, err := req.Post("/api/v1/messages")
	if err != nil {
		return nil, err
	}

	var msg domain.Message
	if err := decodeData(resp.Body(), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation fetches all visible messages with the other user, oldest
// first. Server side this marks inbound messages as seen.
func (c *Client) Conversation(ctx context.Context, otherUserID string) ([]*domain.Message, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/api/v1/conversations/" + otherUserID)
	if err != nil {
		return nil, err
	}

	var messages []*domain.Message
	if err := decodeData(resp.Body(), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Recent fetches the newest inbound messages plus the unread counter
func (c *Client) Recent(ctx context.Context) ([]*domain.Message, int64, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get("/api/v1/messages/recent")
	if err != nil {
		return nil, 0, err
	}

	var envelope apiResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, 0, err
	}
	if envelope.Error != nil {
		return nil, 0, envelope.Error
	}

	var messages []*domain.Message
	if err := json.Unmarshal(envelope.Data, &messages); err != nil {
		return nil, 0, err
	}
	var unread int64
	if envelope.Meta != nil {
		unread = envelope.Meta.UnreadCount
	}
	return messages, unread, nil
}

// Unsend hard-deletes an own message for both participants
func (c *Client) Unsend(ctx context.Context, messageID string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Post("/api/v1/messages/" + messageID + "/unsend")
	if err != nil {
		return err
	}
	return decodeData(resp.Body(), nil)
}

// Hide suppresses a message for the calling viewer only
func (c *Client) Hide(ctx context.Context, messageID string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Post("/api/v1/messages/" + messageID + "/hide")
	if err != nil {
		return err
	}
	return decodeData(resp.Body(), nil)
}

// Correct edits own text or proposes a correction on the counterpart's
func (c *Client) Correct(ctx context.Context, messageID, text string) (*domain.Message, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post("/api/v1/messages/" + messageID + "/correct")
	if err != nil {
		return nil, err
	}

	var msg domain.Message
	if err := decodeData(resp.Body(), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// decodeData unwraps the API response envelope into dest (dest may be nil
// when the caller only cares about success)
func decodeData(body []byte, dest interface{}) error {
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if dest == nil || envelope.Data == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, dest)
}
