package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Message errors
	ErrMessageNotFound  = errors.New("message not found")
	ErrEmptyMessage     = errors.New("message needs text or at least one attachment")
	ErrEmptyCorrection  = errors.New("correction text must not be empty")
	ErrNotSender        = errors.New("only the sender can unsend a message")
	ErrNotParticipant   = errors.New("not a participant of this message")
	ErrSelfMessage      = errors.New("cannot send a message to yourself")
	ErrTooManyMedia     = errors.New("too many media files")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaUnavailable = errors.New("media storage is not available")

	// Member errors
	ErrMemberNotFound = errors.New("member not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
