// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/google/uuid"
)

// ErrConversationNotFound is returned when a session has no summary row yet.
var ErrConversationNotFound = errors.New("conversation not found")

// MessageRepository 是会话消息的追加式存储。
// History 按时间戳升序返回消息，时间戳相同时保持插入顺序；未知会话返回空切片。
type MessageRepository interface {
	Append(ctx context.Context, msg model.NewChatMessage) (model.ChatMessage, error)
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
}

// ConversationRepository 维护每个会话的摘要行。
type ConversationRepository interface {
	// Touch creates the row on first use, otherwise adds added to the
	// message count and refreshes the activity timestamps. title is only
	// used on creation.
	Touch(ctx context.Context, sessionID, title string, added int, at time.Time) (model.Conversation, error)
	FindBySessionID(ctx context.Context, sessionID string) (model.Conversation, error)
	// List returns every conversation, most recent activity first.
	List(ctx context.Context) ([]model.Conversation, error)
}

func newChatMessage(msg model.NewChatMessage, at time.Time) model.ChatMessage {
	var md map[string]interface{}
	if len(msg.Metadata) > 0 {
		md = make(map[string]interface{}, len(msg.Metadata))
		for k, v := range msg.Metadata {
			md[k] = v
		}
	}
	return model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: msg.SessionID,
		Message:   msg.Message,
		Role:      msg.Role,
		Timestamp: at,
		Metadata:  md,
	}
}

// clampTimestamp keeps timestamps non-decreasing within a session when the
// wall clock steps back.
func clampTimestamp(at, last time.Time) time.Time {
	if at.Before(last) {
		return last
	}
	return at
}

func sortByTimestamp(msgs []model.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

func sortByLastActivity(convs []model.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastActivity.After(convs[j].LastActivity)
	})
}
