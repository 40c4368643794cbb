package handler

import (
	"net/http"

	"github.com/arrahchii/portfolio-sub000/internal/profile"
	"github.com/arrahchii/portfolio-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the owner's public profile and the quick-question buttons.
type ProfileHandler struct {
	profile      profile.Profile
	personal     *service.PersonalQueryDetector
	quickAnswers *service.QuickQuestionResolver
}

// NewProfileHandler 创建一个新的 ProfileHandler。
func NewProfileHandler(p profile.Profile, personal *service.PersonalQueryDetector, quickAnswers *service.QuickQuestionResolver) *ProfileHandler {
	return &ProfileHandler{profile: p, personal: personal, quickAnswers: quickAnswers}
}

// GetProfile 返回名称、简介与头像地址。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p := h.profile
	p.ImageURL = h.personal.ImageURL(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": p})
}

// GetQuickQuestions 返回前端展示的快捷问题列表。
func (h *ProfileHandler) GetQuickQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "questions": h.quickAnswers.Questions()})
}

// Health 用于存活探测。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
