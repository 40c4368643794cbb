// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/internal/service"
	"github.com/arrahchii/portfolio-sub000/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理聊天请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	MessageID string             `json:"messageId"`
	Kind      model.ReplyKind    `json:"kind"`
	Profile   *model.ProfileCard `json:"profile,omitempty"`
}

// SendMessage 处理一轮对话。校验失败返回 400，LLM 失败仍返回 200 和致歉文本。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req service.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SendMessage: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"details": []service.FieldError{{Field: "body", Message: err.Error()}},
		})
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": verr.Details})
			return
		}
		log.Error("SendMessage: Failed to process chat turn", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Success:   true,
		Message:   result.Reply.Text,
		MessageID: result.MessageID,
		Kind:      result.Reply.Kind,
		Profile:   result.Reply.Profile,
	})
}

// GetHistory 返回会话的全部消息，按时间升序。
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")
	messages, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("GetHistory: Failed to load chat history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}
