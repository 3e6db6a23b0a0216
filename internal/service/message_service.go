package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vibely/vibely-backend/internal/common"
	"github.com/vibely/vibely-backend/internal/domain"
	"github.com/vibely/vibely-backend/internal/repository"
	"github.com/vibely/vibely-backend/pkg/cache"
	pkglogger "github.com/vibely/vibely-backend/pkg/logger"
)

const recentMessagesLimit = 50

// EventNotifier receives message lifecycle results for best-effort delivery
// to the relevant live stream. Implemented by stream.Fanout. Notification
// never blocks and never fails the operation that triggered it.
type EventNotifier interface {
	MessageCreated(m *domain.Message)
	MessageUnsent(targetID, messageID string)
	MessageHidden(viewerID, messageID string)
	MessageCorrected(targetID string, m *domain.Message)
}

// AttachmentRemover cleans up stored media once the owning message is gone.
// Implemented by MediaService. Cleanup is best effort and never fails the
// unsend that triggered it.
type AttachmentRemover interface {
	RemoveAttachments(ctx context.Context, attachments []domain.Attachment)
}

// CreateMessageRequest carries a validated create command. Attachments are
// already resolved to durable URLs by the media layer.
type CreateMessageRequest struct {
	ToUserID    string
	Text        string
	Attachments []domain.Attachment
}

// MessageService is the message lifecycle state machine
type MessageService interface {
	Create(ctx context.Context, senderID string, req *CreateMessageRequest) (*domain.Message, error)
	Unsend(ctx context.Context, requesterID, messageID string) error
	HideForViewer(ctx context.Context, requesterID, messageID string) error
	Correct(ctx context.Context, editorID, messageID, text string) (*domain.Message, error)
	FetchConversation(ctx context.Context, selfID, otherID string) ([]*domain.Message, error)
	RecentMessages(ctx context.Context, selfID string) ([]*domain.Message, int64, error)
}

type messageService struct {
	repo       repository.MessageRepository
	memberRepo repository.MemberRepository
	events     EventNotifier
	cache      cache.Service
	media      AttachmentRemover
}

// NewMessageService creates a new MessageService. media may be nil when no
// media storage is configured.
func NewMessageService(
	repo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	events EventNotifier,
	cacheSvc cache.Service,
	media AttachmentRemover,
) MessageService {
	return &messageService{
		repo:       repo,
		memberRepo: memberRepo,
		events:     events,
		cache:      cacheSvc,
		media:      media,
	}
}

// Create validates and persists a new message, then notifies the recipient's
// live stream. The caller's own UI updates from the returned message, not
// from a pushed event; only the recipient is notified.
func (s *messageService) Create(ctx context.Context, senderID string, req *CreateMessageRequest) (*domain.Message, error) {
	if senderID == req.ToUserID {
		return nil, common.ErrSelfMessage
	}

	exists, err := s.memberRepo.Exists(req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrMemberNotFound
	}

	msg := &domain.Message{
		ID:          uuid.New().String(),
		FromUserID:  senderID,
		ToUserID:    req.ToUserID,
		Text:        req.Text,
		Attachments: req.Attachments,
		Status:      domain.StatusSent,
		CreatedAt:   time.Now(),
	}
	if !msg.HasPayload() {
		return nil, common.ErrEmptyMessage
	}

	// Durable before the response returns; delivery is not a success criterion.
	if err := s.repo.Create(msg); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.IncrUnread(ctx, msg.ToUserID)       //nolint:errcheck
		s.cache.InvalidateRecent(ctx, msg.ToUserID) //nolint:errcheck
	}
	s.events.MessageCreated(msg)

	return msg, nil
}

// Unsend hard-deletes a message. Only the original sender may unsend; the
// counterpart's stream gets an Unsent event, the requester already knows.
func (s *messageService) Unsend(ctx context.Context, requesterID, messageID string) error {
	msg, err := s.findMessage(messageID)
	if err != nil {
		return err
	}
	if msg.FromUserID != requesterID {
		return common.ErrNotSender
	}

	if err := s.repo.Delete(messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateRecent(ctx, msg.ToUserID) //nolint:errcheck
	}
	// Hard delete extends to the stored media; nothing of the message
	// survives for either participant.
	if s.media != nil && len(msg.Attachments) > 0 {
		s.media.RemoveAttachments(ctx, msg.Attachments)
	}
	s.events.MessageUnsent(msg.Counterpart(requesterID), messageID)

	lg := pkglogger.WithUserID(requesterID)
	lg.Info().
		Str("message_id", messageID).
		Msg("message unsent")
	return nil
}

// HideForViewer adds the requester to the message's hidden-viewer set.
// Idempotent; the counterpart keeps full visibility and is never notified.
// The hide is echoed to the requester's own stream so other open views of
// the same conversation reconcile.
func (s *messageService) HideForViewer(ctx context.Context, requesterID, messageID string) error {
	msg, err := s.findMessage(messageID)
	if err != nil {
		return err
	}
	if !msg.IsParticipant(requesterID) {
		return common.ErrNotParticipant
	}

	if msg.HideFor(requesterID) {
		if err := s.repo.Save(msg); err != nil {
			return err
		}
		if s.cache != nil {
			s.cache.InvalidateRecent(ctx, requesterID) //nolint:errcheck
		}
	}

	s.events.MessageHidden(requesterID, messageID)
	return nil
}

// Correct applies a text amendment. A self-edit by the original sender
// replaces the text in place and flips the edited flag; a counterpart
// correction is appended alongside and never touches the original text.
// Concurrent corrections resolve last-writer-wins per field.
func (s *messageService) Correct(ctx context.Context, editorID, messageID, text string) (*domain.Message, error) {
	if text == "" {
		return nil, common.ErrEmptyCorrection
	}

	msg, err := s.findMessage(messageID)
	if err != nil {
		return nil, err
	}
	if !msg.IsParticipant(editorID) {
		return nil, common.ErrNotParticipant
	}

	if editorID == msg.FromUserID {
		msg.ApplySelfEdit(text)
	} else {
		msg.AppendCorrection(editorID, text, time.Now())
	}

	if err := s.repo.Save(msg); err != nil {
		return nil, err
	}

	s.events.MessageCorrected(msg.Counterpart(editorID), msg)
	return msg, nil
}

// FetchConversation returns the pair's messages visible to selfID, oldest
// first, and bulk-marks the counterpart's messages as seen.
func (s *messageService) FetchConversation(ctx context.Context, selfID, otherID string) ([]*domain.Message, error) {
	messages, err := s.repo.FindConversation(selfID, otherID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkConversationSeen(otherID, selfID); err != nil {
		return nil, err
	}
	// Reflect the bulk update in the returned view.
	for _, m := range messages {
		if m.ToUserID == selfID {
			m.Seen = true
		}
	}

	if s.cache != nil {
		s.cache.ResetUnread(ctx, selfID) //nolint:errcheck
	}

	return messages, nil
}

// RecentMessages returns the newest inbound messages from the caller's
// connections, plus the unread counter. Briefly cached; create and unsend
// invalidate.
func (s *messageService) RecentMessages(ctx context.Context, selfID string) ([]*domain.Message, int64, error) {
	var unread int64
	if s.cache != nil {
		unread, _ = s.cache.UnreadCount(ctx, selfID)
	}

	if s.cache != nil {
		var cached []*domain.Message
		if err := s.cache.GetRecent(ctx, selfID, &cached); err == nil {
			return cached, unread, nil
		}
	}

	member, err := s.memberRepo.FindByID(selfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrMemberNotFound
		}
		return nil, 0, err
	}

	messages, err := s.repo.FindRecentInbound(selfID, recentMessagesLimit)
	if err != nil {
		return nil, 0, err
	}

	// Only messages from connected users surface here.
	filtered := make([]*domain.Message, 0, len(messages))
	for _, m := range messages {
		if member.IsConnectedTo(m.FromUserID) {
			filtered = append(filtered, m)
		}
	}

	if s.cache != nil {
		s.cache.SetRecent(ctx, selfID, filtered) //nolint:errcheck
	}

	return filtered, unread, nil
}

// findMessage maps the store's not-found to the service taxonomy
func (s *messageService) findMessage(id string) (*domain.Message, error) {
	msg, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}
