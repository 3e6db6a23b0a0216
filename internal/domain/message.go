package domain

import "time"

// MessageStatus lifecycle status of a message
type MessageStatus string

const (
	StatusSending MessageStatus = "sending"
	StatusSent    MessageStatus = "sent"
)

// AttachmentKind media kind resolved by the storage layer
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentVideo AttachmentKind = "video"
)

// Attachment is a resolved media reference. Upload validation (size, count)
// happens in the media layer before an attachment reaches the message core.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	URL  string         `json:"url"`
}

// Correction is a counterpart-authored amendment. It is appended alongside
// the original text, never written over it.
type Correction struct {
	EditorID  string    `json:"editor_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a direct message between exactly two users
type Message struct {
	ID          string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	FromUserID  string        `gorm:"column:from_user_id;size:64;index:idx_messages_pair" json:"from_user_id"`
	ToUserID    string        `gorm:"column:to_user_id;size:64;index:idx_messages_pair" json:"to_user_id"`
	Text        string        `gorm:"column:text;type:text" json:"text,omitempty"`
	Attachments []Attachment  `gorm:"column:attachments;type:json;serializer:json" json:"attachments,omitempty"`
	DeletedFor  []string      `gorm:"column:deleted_for;type:json;serializer:json" json:"-"`
	Seen        bool          `gorm:"column:seen;default:false" json:"seen"`
	Status      MessageStatus `gorm:"column:status;size:10;default:sending" json:"status"`
	Edited      bool          `gorm:"column:edited;default:false" json:"edited"`
	Corrections []Correction  `gorm:"column:corrections;type:json;serializer:json" json:"corrections,omitempty"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string { return "messages" }

// HasPayload reports whether the message carries text or at least one attachment
func (m *Message) HasPayload() bool {
	return m.Text != "" || len(m.Attachments) > 0
}

// IsParticipant reports whether userID is the sender or the recipient
func (m *Message) IsParticipant(userID string) bool {
	return m.FromUserID == userID || m.ToUserID == userID
}

// Counterpart returns the other participant relative to selfID
func (m *Message) Counterpart(selfID string) string {
	if m.FromUserID == selfID {
		return m.ToUserID
	}
	return m.FromUserID
}

// HiddenFor reports whether the message is hidden for the given viewer
func (m *Message) HiddenFor(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}

// HideFor adds userID to the hidden-viewer set. Adding an id twice has no
// additional effect. Returns true when the set actually changed.
func (m *Message) HideFor(userID string) bool {
	if m.HiddenFor(userID) {
		return false
	}
	m.DeletedFor = append(m.DeletedFor, userID)
	return true
}

// ApplySelfEdit replaces the text in place. Only valid for the original sender.
func (m *Message) ApplySelfEdit(text string) {
	m.Text = text
	m.Edited = true
}

// AppendCorrection records a counterpart amendment without touching the
// original text or the edited flag.
func (m *Message) AppendCorrection(editorID, text string, at time.Time) {
	m.Corrections = append(m.Corrections, Correction{
		EditorID:  editorID,
		Text:      text,
		CreatedAt: at,
	})
}
