package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const conversationIndexKey = "chat:conversations"

func messagesKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s:messages", sessionID)
}

func conversationKey(sessionID string) string {
	return fmt.Sprintf("chat:conversation:%s", sessionID)
}

type redisMessageRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	now         func() time.Time
}

// NewRedisMessageRepository 创建基于 Redis 列表的消息存储，ttl 为 0 时不过期。
func NewRedisMessageRepository(redisClient *redis.Client, ttl time.Duration) MessageRepository {
	return &redisMessageRepository{
		redisClient: redisClient,
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Append 以 JSON 形式追加到会话列表末尾，并刷新过期时间。
// 时间戳不早于列表中最后一条消息。
func (r *redisMessageRepository) Append(ctx context.Context, msg model.NewChatMessage) (model.ChatMessage, error) {
	key := messagesKey(msg.SessionID)
	at := r.now()
	last, err := r.redisClient.LIndex(ctx, key, -1).Result()
	switch {
	case err == nil:
		var prev model.ChatMessage
		if err := json.Unmarshal([]byte(last), &prev); err != nil {
			return model.ChatMessage{}, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		at = clampTimestamp(at, prev.Timestamp)
	case err != redis.Nil:
		return model.ChatMessage{}, fmt.Errorf("failed to read last chat message: %w", err)
	}

	stored := newChatMessage(msg, at)
	data, err := json.Marshal(stored)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	pipe := r.redisClient.TxPipeline()
	pipe.RPush(ctx, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return model.ChatMessage{}, fmt.Errorf("failed to append chat message: %w", err)
	}
	return stored, nil
}

// History 读取整个会话列表，RPUSH 已保证插入顺序。
func (r *redisMessageRepository) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	values, err := r.redisClient.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	messages := make([]model.ChatMessage, 0, len(values))
	for _, v := range values {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

type redisConversationRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewRedisConversationRepository 创建基于 Redis 哈希的会话摘要存储。
func NewRedisConversationRepository(redisClient *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient, ttl: ttl}
}

func (r *redisConversationRepository) Touch(ctx context.Context, sessionID, title string, added int, at time.Time) (model.Conversation, error) {
	key := conversationKey(sessionID)
	ts := at.UTC().Format(time.RFC3339Nano)

	pipe := r.redisClient.TxPipeline()
	pipe.HSetNX(ctx, key, "id", uuid.NewString())
	pipe.HSetNX(ctx, key, "title", title)
	pipe.HSetNX(ctx, key, "createdAt", ts)
	pipe.HIncrBy(ctx, key, "messageCount", int64(added))
	pipe.HSet(ctx, key, "updatedAt", ts, "lastActivity", ts)
	pipe.SAdd(ctx, conversationIndexKey, sessionID)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return model.Conversation{}, fmt.Errorf("failed to touch conversation: %w", err)
	}
	return r.FindBySessionID(ctx, sessionID)
}

func (r *redisConversationRepository) FindBySessionID(ctx context.Context, sessionID string) (model.Conversation, error) {
	fields, err := r.redisClient.HGetAll(ctx, conversationKey(sessionID)).Result()
	if err != nil {
		return model.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}
	if len(fields) == 0 {
		return model.Conversation{}, ErrConversationNotFound
	}
	return parseConversation(sessionID, fields)
}

// List 通过索引集合遍历所有会话，已过期的会话会被跳过。
func (r *redisConversationRepository) List(ctx context.Context) ([]model.Conversation, error) {
	sessionIDs, err := r.redisClient.SMembers(ctx, conversationIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation index: %w", err)
	}

	convs := make([]model.Conversation, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		conv, err := r.FindBySessionID(ctx, sessionID)
		if err == ErrConversationNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	sortByLastActivity(convs)
	return convs, nil
}

func parseConversation(sessionID string, fields map[string]string) (model.Conversation, error) {
	conv := model.Conversation{
		ID:        fields["id"],
		SessionID: sessionID,
		Title:     fields["title"],
	}

	count, err := strconv.Atoi(fields["messageCount"])
	if err != nil {
		return model.Conversation{}, fmt.Errorf("invalid messageCount for session %s: %w", sessionID, err)
	}
	conv.MessageCount = count

	for name, dst := range map[string]*time.Time{
		"createdAt":    &conv.CreatedAt,
		"updatedAt":    &conv.UpdatedAt,
		"lastActivity": &conv.LastActivity,
	} {
		t, err := time.Parse(time.RFC3339Nano, fields[name])
		if err != nil {
			return model.Conversation{}, fmt.Errorf("invalid %s for session %s: %w", name, sessionID, err)
		}
		*dst = t
	}
	return conv, nil
}
