package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	event := model.TurnEvent{
		SessionID:          "session-1",
		UserMessageID:      "u-1",
		AssistantMessageID: "a-1",
		Route:              model.RoutePersonal,
		ReplyKind:          model.ReplyProfile,
		LatencyMs:          12,
		OccurredAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	msg, err := buildMessage(event)
	require.NoError(t, err)
	assert.Equal(t, "session-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "route", msg.Headers[0].Key)
	assert.Equal(t, "personal", string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "a-1", decoded["assistant_message_id"])
	assert.Equal(t, "profile", decoded["reply_kind"])
	assert.Equal(t, "2024-05-01T10:00:00Z", decoded["occurred_at"])
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, splitBrokers(""))
}
