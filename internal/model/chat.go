// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Role 标识消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage 代表会话中的单条消息，创建后不可修改。
// Seq 只用于关系型存储中保持插入顺序，不对外暴露。
type ChatMessage struct {
	Seq       uint64            `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string            `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	SessionID string            `gorm:"type:varchar(128);index:idx_chat_messages_session_time,priority:1;not null" json:"sessionId"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Role      Role              `gorm:"type:varchar(16);not null" json:"role"`
	Timestamp time.Time         `gorm:"column:created_at;index:idx_chat_messages_session_time,priority:2;not null" json:"timestamp"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewChatMessage carries the caller-supplied fields of a message. The store
// assigns the id and timestamp.
type NewChatMessage struct {
	SessionID string
	Message   string
	Role      Role
	Metadata  map[string]interface{}
}

// Conversation 是会话的摘要行，首轮对话时懒创建，之后每轮更新。
type Conversation struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID    string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"sessionId"`
	Title        string    `gorm:"type:varchar(255)" json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastActivity time.Time `gorm:"index" json:"lastActivity"`
	MessageCount int       `gorm:"not null;default:0" json:"messageCount"`
}

func (Conversation) TableName() string {
	return "conversations"
}
