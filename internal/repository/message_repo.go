package repository

import (
	"github.com/vibely/vibely-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id string) (*domain.Message, error)
	FindConversation(selfID, otherID string) ([]*domain.Message, error)
	FindRecentInbound(toUserID string, limit int) ([]*domain.Message, error)
	MarkConversationSeen(fromUserID, toUserID string) error
	Save(msg *domain.Message) error
	Delete(id string) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// notHiddenFor filters out messages the given viewer hid for themselves.
// deleted_for is a JSON array column; NULL means nobody hid the message.
func notHiddenFor(db *gorm.DB, viewerID string) *gorm.DB {
	return db.Where(
		"deleted_for IS NULL OR NOT JSON_CONTAINS(deleted_for, JSON_QUOTE(?))",
		viewerID,
	)
}

// FindConversation returns all messages between the pair, both directions,
// excluding those selfID hid, ordered by creation time ascending.
func (r *messageRepository) FindConversation(selfID, otherID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	q := r.db.
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			selfID, otherID, otherID, selfID)
	err := notHiddenFor(q, selfID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// FindRecentInbound returns the newest messages addressed to the user
func (r *messageRepository) FindRecentInbound(toUserID string, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	q := r.db.Where("to_user_id = ?", toUserID)
	err := notHiddenFor(q, toUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// MarkConversationSeen bulk-marks everything the counterpart sent as seen.
// One UPDATE for the whole conversation, not one per message.
func (r *messageRepository) MarkConversationSeen(fromUserID, toUserID string) error {
	return r.db.Model(&domain.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND seen = false", fromUserID, toUserID).
		Update("seen", true).Error
}

// Save persists lifecycle mutations (text, edited, corrections, deleted_for)
func (r *messageRepository) Save(msg *domain.Message) error {
	return r.db.Model(msg).
		Select("text", "edited", "corrections", "deleted_for").
		Updates(msg).Error
}

// Delete hard-deletes a message record
func (r *messageRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
