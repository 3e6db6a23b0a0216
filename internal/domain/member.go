package domain

import "time"

// Member represents a user profile as far as the messaging core needs it.
// Identity itself comes from the JWT layer; this record only backs recipient
// existence checks and the connection filter on recent messages.
type Member struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Username    string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	FullName    string    `gorm:"column:full_name;size:128" json:"full_name"`
	AvatarURL   string    `gorm:"column:avatar_url;size:512" json:"avatar_url,omitempty"`
	Connections []string  `gorm:"column:connections;type:json;serializer:json" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Member) TableName() string { return "members" }

// IsConnectedTo reports whether the given user is in this member's connections
func (m *Member) IsConnectedTo(userID string) bool {
	for _, id := range m.Connections {
		if id == userID {
			return true
		}
	}
	return false
}
