package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/repository"
	"github.com/arrahchii/portfolio-sub000/internal/service"
	"github.com/arrahchii/portfolio-sub000/pkg/log"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与会话摘要相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// ListConversations 返回会话摘要列表，支持 start_date / end_date (YYYY-MM-DD) 过滤。
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	var startTime, endTime *time.Time
	timeLayout := "2006-01-02"
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		t, err := time.Parse(timeLayout, startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid start_date format, use YYYY-MM-DD"})
			return
		}
		startTime = &t
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		t, err := time.Parse(timeLayout, endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid end_date format, use YYYY-MM-DD"})
			return
		}
		// Include the whole day
		t = t.Add(24*time.Hour - time.Nanosecond)
		endTime = &t
	}

	conversations, err := h.service.List(c.Request.Context(), startTime, endTime)
	if err != nil {
		log.Error("ListConversations: Failed to list conversations", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversations": conversations})
}

// GetConversation 返回单个会话摘要。
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conv, err := h.service.Get(c.Request.Context(), c.Param("sessionId"))
	if errors.Is(err, repository.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Conversation not found"})
		return
	}
	if err != nil {
		log.Error("GetConversation: Failed to load conversation", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversation": conv})
}
