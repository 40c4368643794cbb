package repository

import (
	"context"
	"sync"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/google/uuid"
)

type memoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]model.ChatMessage
	now      func() time.Time
}

// NewMemoryMessageRepository 创建进程内的消息存储，重启后数据丢失。
func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{
		messages: make(map[string][]model.ChatMessage),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryMessageRepository) Append(_ context.Context, msg model.NewChatMessage) (model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now()
	// 墙钟回拨时沿用上一条的时间戳，保证同一会话内时间戳不递减
	if existing := r.messages[msg.SessionID]; len(existing) > 0 {
		at = clampTimestamp(at, existing[len(existing)-1].Timestamp)
	}

	stored := newChatMessage(msg, at)
	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], stored)
	return stored, nil
}

func (r *memoryMessageRepository) History(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	r.mu.RLock()
	messages := r.messages[sessionID]
	copied := make([]model.ChatMessage, len(messages))
	copy(copied, messages)
	r.mu.RUnlock()

	sortByTimestamp(copied)
	return copied, nil
}

type memoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]model.Conversation
}

// NewMemoryConversationRepository 创建进程内的会话摘要存储。
func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{
		conversations: make(map[string]model.Conversation),
	}
}

func (r *memoryConversationRepository) Touch(_ context.Context, sessionID, title string, added int, at time.Time) (model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[sessionID]
	if !ok {
		conv = model.Conversation{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Title:     title,
			CreatedAt: at,
		}
	}
	conv.MessageCount += added
	conv.UpdatedAt = at
	conv.LastActivity = at
	r.conversations[sessionID] = conv
	return conv, nil
}

func (r *memoryConversationRepository) FindBySessionID(_ context.Context, sessionID string) (model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[sessionID]
	if !ok {
		return model.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

func (r *memoryConversationRepository) List(_ context.Context) ([]model.Conversation, error) {
	r.mu.RLock()
	convs := make([]model.Conversation, 0, len(r.conversations))
	for _, conv := range r.conversations {
		convs = append(convs, conv)
	}
	r.mu.RUnlock()

	sortByLastActivity(convs)
	return convs, nil
}
