package service

import (
	"context"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/internal/repository"
)

// ConversationService 定义了会话摘要的查询接口。
type ConversationService interface {
	// List returns summaries whose last activity falls in [start, end], most recent first.
	// A nil bound is open.
	List(ctx context.Context, start, end *time.Time) ([]model.Conversation, error)
	Get(ctx context.Context, sessionID string) (model.Conversation, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

func (s *conversationService) List(ctx context.Context, start, end *time.Time) ([]model.Conversation, error) {
	convs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return convs, nil
	}

	filtered := make([]model.Conversation, 0, len(convs))
	for _, c := range convs {
		if start != nil && c.LastActivity.Before(*start) {
			continue
		}
		if end != nil && c.LastActivity.After(*end) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

// Get 返回单个会话摘要，不存在时返回 repository.ErrConversationNotFound。
func (s *conversationService) Get(ctx context.Context, sessionID string) (model.Conversation, error) {
	return s.repo.FindBySessionID(ctx, sessionID)
}
