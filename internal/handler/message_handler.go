package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibely/vibely-backend/internal/common"
	"github.com/vibely/vibely-backend/internal/middleware"
	"github.com/vibely/vibely-backend/internal/service"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	service      service.MessageService
	mediaService *service.MediaService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(svc service.MessageService, mediaService *service.MediaService) *MessageHandler {
	return &MessageHandler{service: svc, mediaService: mediaService}
}

// CorrectMessageRequest correction payload
type CorrectMessageRequest struct {
	Text string `json:"text"`
}

// Send handles POST /messages
// @Summary Send a direct message
// @Tags messages
// @Accept mpfd
// @Produce json
// @Param to_user_id formData string true "Recipient user id"
// @Param text formData string false "Message text"
// @Param media formData file false "Up to 10 image/video files"
// @Success 200 {object} common.APIResponse{data=domain.Message}
// @Security BearerAuth
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	toUserID := c.PostForm("to_user_id")
	if toUserID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "to_user_id is required", nil)
		return
	}

	req := &service.CreateMessageRequest{
		ToUserID: toUserID,
		Text:     c.PostForm("text"),
	}

	// Media is resolved to durable URLs before the message core sees it.
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["media"]
		if len(files) > 0 {
			attachments, err := h.mediaService.ResolveAttachments(c.Request.Context(), files)
			if err != nil {
				common.FailFromError(c, err)
				return
			}
			req.Attachments = attachments
		}
	}

	msg, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, msg, nil)
}

// GetConversation handles GET /conversations/:user_id
// @Summary Fetch the conversation with another user
// @Description Returns all visible messages with the user, oldest first, and marks inbound messages as seen
// @Tags messages
// @Produce json
// @Param user_id path string true "Counterpart user id"
// @Success 200 {object} common.APIResponse{data=[]domain.Message}
// @Security BearerAuth
// @Router /conversations/{user_id} [get]
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	otherID := c.Param("user_id")
	messages, err := h.service.FetchConversation(c.Request.Context(), userID, otherID)
	if err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, messages, nil)
}

// GetRecent handles GET /messages/recent
// @Summary Recent inbound messages from connections
// @Tags messages
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Message}
// @Security BearerAuth
// @Router /messages/recent [get]
func (h *MessageHandler) GetRecent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	messages, unread, err := h.service.RecentMessages(c.Request.Context(), userID)
	if err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, messages, &common.Meta{UnreadCount: unread})
}

// Unsend handles POST /messages/:id/unsend
// @Summary Unsend (hard-delete) an own message
// @Tags messages
// @Produce json
// @Param id path string true "Message id"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /messages/{id}/unsend [post]
func (h *MessageHandler) Unsend(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.Unsend(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"message": "message unsent"}, nil)
}

// Hide handles POST /messages/:id/hide
// @Summary Hide a message for the requesting viewer only
// @Tags messages
// @Produce json
// @Param id path string true "Message id"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /messages/{id}/hide [post]
func (h *MessageHandler) Hide(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.service.HideForViewer(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"message": "message hidden for you"}, nil)
}

// Correct handles POST /messages/:id/correct
// @Summary Edit own message text or propose a correction on the counterpart's
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Message id"
// @Param request body CorrectMessageRequest true "Correction text"
// @Success 200 {object} common.APIResponse{data=domain.Message}
// @Security BearerAuth
// @Router /messages/{id}/correct [post]
func (h *MessageHandler) Correct(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req CorrectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	msg, err := h.service.Correct(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		common.FailFromError(c, err)
		return
	}

	common.SuccessResponse(c, msg, nil)
}
