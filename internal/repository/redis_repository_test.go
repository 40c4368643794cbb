package repository

import (
	"context"
	"testing"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "chat:session:abc:messages", messagesKey("abc"))
	assert.Equal(t, "chat:conversation:abc", conversationKey("abc"))
}

func TestRedisMessageRoundTrip(t *testing.T) {
	mr, rdb := newMiniredis(t)
	repo := NewRedisMessageRepository(rdb, time.Hour)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		user, err := repo.Append(ctx, model.NewChatMessage{SessionID: "s1", Message: "question", Role: model.RoleUser})
		require.NoError(t, err)
		assistant, err := repo.Append(ctx, model.NewChatMessage{
			SessionID: "s1",
			Message:   "answer",
			Role:      model.RoleAssistant,
			Metadata:  map[string]interface{}{"kind": "text"},
		})
		require.NoError(t, err)
		ids = append(ids, user.ID, assistant.ID)
	}

	history, err := repo.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 6)
	for i, m := range history {
		assert.Equal(t, ids[i], m.ID)
		assert.Equal(t, "s1", m.SessionID)
		if i%2 == 0 {
			assert.Equal(t, model.RoleUser, m.Role)
		} else {
			assert.Equal(t, model.RoleAssistant, m.Role)
			assert.Equal(t, "text", m.Metadata["kind"])
		}
		if i > 0 {
			assert.False(t, m.Timestamp.Before(history[i-1].Timestamp))
		}
	}

	assert.Equal(t, time.Hour, mr.TTL(messagesKey("s1")))
}

func TestRedisHistoryUnknownSessionIsEmpty(t *testing.T) {
	_, rdb := newMiniredis(t)

	history, err := NewRedisMessageRepository(rdb, time.Hour).History(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestRedisAppendClampsBackwardClock(t *testing.T) {
	_, rdb := newMiniredis(t)
	repo := NewRedisMessageRepository(rdb, time.Hour).(*redisMessageRepository)
	ctx := context.Background()
	later := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	repo.now = func() time.Time { return later }
	user, err := repo.Append(ctx, model.NewChatMessage{SessionID: "s", Message: "q", Role: model.RoleUser})
	require.NoError(t, err)

	repo.now = func() time.Time { return later.Add(-time.Minute) }
	assistant, err := repo.Append(ctx, model.NewChatMessage{SessionID: "s", Message: "a", Role: model.RoleAssistant})
	require.NoError(t, err)
	assert.True(t, assistant.Timestamp.Equal(user.Timestamp))

	history, err := repo.History(ctx, "s")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, user.ID, history[0].ID)
	assert.Equal(t, assistant.ID, history[1].ID)
}

func TestRedisConversationTouch(t *testing.T) {
	mr, rdb := newMiniredis(t)
	repo := NewRedisConversationRepository(rdb, time.Hour)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := repo.FindBySessionID(ctx, "s1")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	var first model.Conversation
	for i := 0; i < 6; i++ {
		conv, err := repo.Touch(ctx, "s1", "first title", 1, t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		if i == 0 {
			first = conv
		}
	}

	conv, err := repo.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, conv.ID)
	assert.Equal(t, "first title", conv.Title)
	assert.Equal(t, 6, conv.MessageCount)
	assert.True(t, conv.CreatedAt.Equal(t0))
	assert.True(t, conv.LastActivity.Equal(t0.Add(5*time.Second)))

	assert.Equal(t, time.Hour, mr.TTL(conversationKey("s1")))
}

func TestRedisListSkipsExpiredConversations(t *testing.T) {
	mr, rdb := newMiniredis(t)
	repo := NewRedisConversationRepository(rdb, time.Hour)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := repo.Touch(ctx, "old", "old", 1, t0)
	require.NoError(t, err)
	mr.FastForward(30 * time.Minute)
	_, err = repo.Touch(ctx, "new", "new", 1, t0.Add(30*time.Minute))
	require.NoError(t, err)
	mr.FastForward(45 * time.Minute)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].SessionID)
}

func TestParseConversation(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 30, 0, 123, time.UTC)
	fields := map[string]string{
		"id":           "conv-1",
		"title":        "Who is Lance?",
		"messageCount": "4",
		"createdAt":    ts.Format(time.RFC3339Nano),
		"updatedAt":    ts.Add(time.Minute).Format(time.RFC3339Nano),
		"lastActivity": ts.Add(time.Minute).Format(time.RFC3339Nano),
	}

	conv, err := parseConversation("s1", fields)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "s1", conv.SessionID)
	assert.Equal(t, 4, conv.MessageCount)
	assert.True(t, conv.CreatedAt.Equal(ts))
	assert.True(t, conv.LastActivity.Equal(ts.Add(time.Minute)))
}

func TestParseConversationRejectsCorruptFields(t *testing.T) {
	_, err := parseConversation("s1", map[string]string{"messageCount": "x"})
	assert.Error(t, err)

	_, err = parseConversation("s1", map[string]string{"messageCount": "1", "createdAt": "yesterday"})
	assert.Error(t, err)
}
