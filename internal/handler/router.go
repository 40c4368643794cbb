package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Chat         *ChatHandler
	Conversation *ConversationHandler
	Profile      *ProfileHandler
}

// RegisterRoutes 注册所有路由，业务接口挂在 /api 下。
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", Health)

	api := r.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.POST("", h.Chat.SendMessage)
			chat.GET("/history/:sessionId", h.Chat.GetHistory)
		}

		conversations := api.Group("/conversations")
		{
			conversations.GET("", h.Conversation.ListConversations)
			conversations.GET("/:sessionId", h.Conversation.GetConversation)
		}

		api.GET("/profile", h.Profile.GetProfile)
		api.GET("/quick-questions", h.Profile.GetQuickQuestions)
	}
}
