package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vibely/vibely-backend/internal/handler"
	"github.com/vibely/vibely-backend/internal/middleware"
	"github.com/vibely/vibely-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	messageHandler *handler.MessageHandler,
	streamHandler *handler.StreamHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Message commands (request/response, not streamed)
	messages := api.Group("/messages")
	{
		messages.POST("", messageHandler.Send)
		messages.GET("/recent", messageHandler.GetRecent)
		messages.POST("/:id/unsend", messageHandler.Unsend)
		messages.POST("/:id/hide", messageHandler.Hide)
		messages.POST("/:id/correct", messageHandler.Correct)
	}

	// Conversation view (side effect: marks inbound messages as seen)
	api.GET("/conversations/:user_id", messageHandler.GetConversation)

	// Live event stream: one long-lived SSE channel per user
	api.GET("/stream", streamHandler.Connect)
}
